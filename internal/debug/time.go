// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package debug

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.jetify.com/nps/internal/envir"
)

var timers = struct {
	sync.Mutex
	out           io.Writer
	slowStep      time.Duration // faster steps are not reported
	headerPrinted bool
}{slowStep: time.Millisecond}

func init() {
	if on, _ := strconv.ParseBool(os.Getenv(envir.NPSPrintExecTime)); on {
		timers.out = os.Stderr
	}
}

// EnableTimers reports steps that take at least slowStep to w, or turns
// timers off when w is nil. NPS_PRINT_EXEC_TIME=1 reports to stderr.
func EnableTimers(w io.Writer, slowStep time.Duration) {
	timers.Lock()
	defer timers.Unlock()
	timers.out = w
	timers.slowStep = slowStep
	timers.headerPrinted = false
}

type timer struct {
	name  string
	start time.Time
}

// Timer starts timing a step. It returns nil, which is safe to End, when
// timers are off.
func Timer(name string) *timer {
	timers.Lock()
	defer timers.Unlock()
	if timers.out == nil {
		return nil
	}
	return &timer{name: name, start: time.Now()}
}

// FunctionTimer is Timer named after its caller, for example
// "session.(*Store).read".
func FunctionTimer() *timer {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return Timer("unknown")
	}
	return Timer(path.Base(runtime.FuncForPC(pc).Name()))
}

func (t *timer) End() {
	if t == nil {
		return
	}
	took := time.Since(t.start)
	timers.Lock()
	defer timers.Unlock()
	if timers.out == nil || took < timers.slowStep {
		return
	}
	if !timers.headerPrinted {
		fmt.Fprintf(timers.out, "nps steps slower than %s:\n", timers.slowStep)
		timers.headerPrinted = true
	}
	fmt.Fprintf(timers.out, "  %s took %s\n", t.name, took.Round(time.Microsecond))
}
