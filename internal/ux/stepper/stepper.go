// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package stepper shows a single, continuously updated status line with a
// spinner in front of it.
package stepper

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

type Stepper struct {
	spinner *spinner.Spinner
}

// Start begins spinning on w. Nothing is drawn when w is not a terminal.
func Start(w io.Writer, format string, a ...any) *Stepper {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	if err := s.Color("magenta"); err != nil {
		panic(err)
	}
	s.Suffix = " " + fmt.Sprintf(format, a...)
	s.Start()
	return &Stepper{spinner: s}
}

// Display replaces the status text next to the spinner.
func (s *Stepper) Display(format string, a ...any) {
	s.spinner.Lock()
	defer s.spinner.Unlock()
	// leading space keeps a gap between the animation and the text
	s.spinner.Suffix = " " + fmt.Sprintf(format, a...)
}

func (s *Stepper) Stop(format string, a ...any) {
	s.finish(color.BlueString("→"), format, a...)
}

func (s *Stepper) Fail(format string, a ...any) {
	s.finish(color.RedString("✘"), format, a...)
}

func (s *Stepper) finish(mark, format string, a ...any) {
	s.spinner.FinalMSG = fmt.Sprintf("%s %s\n", mark, fmt.Sprintf(format, a...))
	s.spinner.Stop()
}
