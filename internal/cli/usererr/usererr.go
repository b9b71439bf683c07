// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package usererr marks errors whose message is meant for the person running
// nps, as opposed to internal failures that should be reported.
package usererr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type level int

const (
	levelError level = iota
	levelWarning
)

type combined struct {
	source      error
	userMessage string
	level       level
	// hint is an nps command line that fixes the error, if there is one.
	hint string
}

// New creates a user error with the given message. User errors are never
// sent to Sentry.
func New(msg string, args ...any) error {
	return errors.WithStack(&combined{
		userMessage: fmt.Sprintf(msg, args...),
	})
}

func NewWarning(msg string, args ...any) error {
	return errors.WithStack(&combined{
		userMessage: fmt.Sprintf(msg, args...),
		level:       levelWarning,
	})
}

// WithUserMessage gives source a user-facing message. A source that already
// has one keeps it.
func WithUserMessage(source error, msg string, args ...any) error {
	if source == nil || hasUserMessage(source) {
		return source
	}
	return &combined{
		source:      source,
		userMessage: fmt.Sprintf(msg, args...),
	}
}

// WithHint records the command the user can run to fix err, for example
// "nps auth login <user-id>". Errors that aren't user errors are returned
// unchanged.
func WithHint(err error, command string, args ...any) error {
	c := &combined{}
	if errors.As(err, &c) {
		c.hint = fmt.Sprintf(command, args...)
	}
	return err
}

// Hint returns the command recorded with WithHint, or "".
func Hint(err error) string {
	c := &combined{}
	if errors.As(err, &c) {
		return c.hint
	}
	return ""
}

// Extract unwraps and returns the user error if it exists.
func Extract(err error) (error, bool) { // nolint: revive
	c := &combined{}
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// ShouldLogError reports whether err is an internal failure worth sending to
// Sentry.
func ShouldLogError(err error) bool {
	if err == nil {
		return false
	}
	_, isUserErr := Extract(err)
	return !isUserErr
}

func IsWarning(err error) bool {
	c := &combined{}
	if errors.As(err, &c) {
		return c.level == levelWarning
	}
	return false
}

func (c *combined) Error() string {
	if c.source == nil {
		return c.userMessage
	}
	return c.userMessage + "\nsource: " + c.source.Error()
}

func (c *combined) Is(target error) bool {
	return errors.Is(c.source, target)
}

func (c *combined) Unwrap() error { return c.Cause() }

func (c *combined) Cause() error { return errors.Cause(c.source) }

// Format supports %+v the way github.com/pkg/errors does.
func (c *combined) Format(s fmt.State, verb rune) {
	if c.source == nil {
		_, _ = io.WriteString(s, c.userMessage)
		return
	}
	errors.Wrap(c.source, c.userMessage).(interface { //nolint:errorlint
		Format(s fmt.State, verb rune)
	}).Format(s, verb)
}

func hasUserMessage(err error) bool {
	_, hasUserMessage := Extract(err)
	return hasUserMessage
}
