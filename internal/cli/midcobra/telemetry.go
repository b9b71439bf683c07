// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package midcobra

import (
	"time"

	"github.com/spf13/cobra"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/telemetry"
)

// We collect some light, anonymous telemetry: which command ran, how long it
// took, whether it failed and whether someone was signed in. User ids, emails
// and error messages are never sent. Set DO_NOT_TRACK=1 to opt out.
func Telemetry(opts *TelemetryOpts) Middleware {
	return &telemetryMiddleware{
		opts:     *opts,
		disabled: telemetry.Disabled(opts.TelemetryKey) && telemetry.Disabled(opts.SentryDSN),
	}
}

type TelemetryOpts struct {
	AppName      string
	AppVersion   string
	SentryDSN    string // used by error reporting
	TelemetryKey string
	// SignedIn reports whether a primary user is signed in. May be nil.
	SignedIn func() bool
}

type telemetryMiddleware struct {
	opts     TelemetryOpts
	disabled bool

	startTime time.Time
	sentry    *telemetry.Sentry
}

var _ Middleware = (*telemetryMiddleware)(nil)

func (m *telemetryMiddleware) preRun(cmd *cobra.Command, args []string) {
	m.startTime = time.Now()
	if m.disabled {
		return
	}
	m.sentry = telemetry.NewSentry(m.opts.SentryDSN)
	m.sentry.Init(m.opts.AppName, m.opts.AppVersion, telemetry.ExecutionID)
}

func (m *telemetryMiddleware) postRun(cmd *cobra.Command, args []string, runErr error) {
	if m.disabled {
		return
	}

	subcmd, _, err := getSubcommand(cmd, args)
	if err != nil {
		// Ignore invalid commands
		return
	}

	if usererr.ShouldLogError(runErr) {
		m.sentry.CaptureException(subcmd.CommandPath(), runErr)
	}

	signedIn := m.opts.SignedIn != nil && m.opts.SignedIn()
	telemetry.Track(m.opts.TelemetryKey, telemetry.NewEvent(
		subcmd.CommandPath(),
		time.Since(m.startTime),
		runErr != nil,
		signedIn,
	))
}

func getSubcommand(c *cobra.Command, args []string) (subcmd *cobra.Command, subargs []string, err error) {
	if c.TraverseChildren {
		subcmd, subargs, err = c.Traverse(args)
	} else {
		subcmd, subargs, err = c.Find(args)
	}
	return subcmd, subargs, err
}
