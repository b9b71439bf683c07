// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package midcobra

import (
	"context"
	"os"
	"runtime/trace"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/ux"
)

// TraceMiddleware records a runtime/trace of the command, as a task named
// after the command path, to the file named by its flag. Opening the trace is
// best effort: the command runs either way.
type TraceMiddleware struct {
	flag *pflag.Flag
	out  *os.File
	task *trace.Task
}

var _ Middleware = (*TraceMiddleware)(nil)

func (t *TraceMiddleware) AttachToFlag(flags *pflag.FlagSet, flagName string) {
	flags.String(flagName, "", "write a runtime trace of the command to a file")
	t.flag = flags.Lookup(flagName)
	t.flag.Hidden = true
	t.flag.NoOptDefVal = "nps.trace"
}

func (t *TraceMiddleware) preRun(cmd *cobra.Command, args []string) {
	if t == nil || t.flag == nil || t.flag.Value.String() == "" {
		return
	}
	if err := t.start(t.flag.Value.String()); err != nil {
		ux.Fwarning(cmd.ErrOrStderr(), "not tracing: %v\n", err)
		return
	}

	sub, _, err := cmd.Find(args)
	if err != nil {
		sub = cmd
	}
	var ctx context.Context
	ctx, t.task = trace.NewTask(cmd.Context(), sub.CommandPath())
	cmd.SetContext(ctx)
}

func (t *TraceMiddleware) start(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		return errors.WithStack(err)
	}
	t.out = f
	return nil
}

func (t *TraceMiddleware) postRun(cmd *cobra.Command, _ []string, _ error) {
	if t.out == nil {
		return
	}
	t.task.End()
	trace.Stop()
	if err := t.out.Close(); err != nil {
		ux.Fwarning(cmd.ErrOrStderr(), "trace may be incomplete: %v\n", err)
	}
	debug.Log("trace written to %s", t.out.Name())
	t.out, t.task = nil, nil
}
