// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package debug is the nps debug log. It stays silent unless NPS_DEBUG=1 or
// --debug turns it on.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"go.jetify.com/nps/internal/envir"
)

var enabled = envir.IsNPSDebugEnabled()

var logger = log.New(os.Stderr, "[nps] ", log.Ldate|log.Ltime|log.Lshortfile)

// crashOutput is where Recover reports a panic outside debug mode.
var crashOutput io.Writer = os.Stderr

func IsEnabled() bool { return enabled }

func Enable() {
	SetEnabled(true)
	_ = logger.Output(2, "debug mode enabled")
}

func SetEnabled(on bool) { enabled = on }

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Log(format string, v ...any) {
	if !enabled {
		return
	}
	_ = logger.Output(2, fmt.Sprintf(format, v...))
}

// Recover reports a panic to Sentry. In debug mode it panics again so the
// stack trace is printed; otherwise it prints a one-line error.
func Recover() {
	r := recover()
	if r == nil {
		return
	}

	sentry.CurrentHub().Recover(r)
	if enabled {
		logger.Println("re-panicking because debug mode is on")
		panic(r)
	}
	fmt.Fprintf(crashOutput, "Error: nps crashed: %v\nRun again with %s=1 to see the stack trace.\n", r, envir.NPSDebug)
}

// EarliestStackTrace returns the innermost error in err's chain that carries a
// github.com/pkg/errors stack trace, or nil if none does.
func EarliestStackTrace(err error) error {
	type stackTracer interface{ StackTrace() errors.StackTrace }

	var stErr error
	for err != nil {
		if _, ok := err.(stackTracer); ok { //nolint:errorlint
			stErr = err
		}
		err = errors.Unwrap(err)
	}
	return stErr
}
