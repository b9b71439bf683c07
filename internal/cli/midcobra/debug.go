// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package midcobra

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/fileutil"
	"go.jetify.com/nps/internal/telemetry"
	"go.jetify.com/nps/internal/ux"
)

// StateFile is a file commands read their state from, such as the session
// file. Its path is resolved when a command fails.
type StateFile struct {
	Name string
	Path func() string
}

// DebugMiddleware prints command errors along with any fix-it hint. In debug
// mode it also logs the error's stack and where each state file lives.
type DebugMiddleware struct {
	flag  *pflag.Flag
	files []StateFile
}

var _ Middleware = (*DebugMiddleware)(nil)

func NewDebugMiddleware(files ...StateFile) *DebugMiddleware {
	return &DebugMiddleware{files: files}
}

func (d *DebugMiddleware) AttachToFlag(flags *pflag.FlagSet, flagName string) {
	flags.Bool(flagName, false, "log stack traces and state file paths on errors")
	d.flag = flags.Lookup(flagName)
	d.flag.Hidden = true
}

func (d *DebugMiddleware) preRun(*cobra.Command, []string) {
	if d == nil || d.flag == nil || !d.flag.Changed {
		return
	}
	if on, _ := strconv.ParseBool(d.flag.Value.String()); on {
		debug.Enable()
	}
}

func (d *DebugMiddleware) postRun(cmd *cobra.Command, _ []string, runErr error) {
	if runErr == nil {
		return
	}
	w := cmd.ErrOrStderr()
	userErr, isUserErr := usererr.Extract(runErr)
	switch {
	case isUserErr && usererr.IsWarning(userErr):
		ux.Fwarning(w, "%s\n", userErr.Error())
		return
	case isUserErr:
		color.New(color.FgRed).Fprintf(w, "\nError: %s\n\n", userErr.Error())
		if hint := usererr.Hint(runErr); hint != "" {
			fmt.Fprintf(w, "Run `%s` and try again.\n\n", hint)
		}
	default:
		color.New(color.FgRed).Fprintf(w, "Error: %v\n\n", runErr)
	}

	if !debug.IsEnabled() {
		return
	}
	attrs := []any{
		"command", cmd.CommandPath(),
		"execid", telemetry.ExecutionID,
		"stack", debug.EarliestStackTrace(runErr),
	}
	for _, f := range d.files {
		path := f.Path()
		attrs = append(attrs, slog.Group(f.Name,
			"path", path,
			"exists", fileutil.Exists(path),
		))
	}
	slog.Error("nps command failed", attrs...)
}
