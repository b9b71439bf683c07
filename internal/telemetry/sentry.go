// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"go.jetify.com/nps/internal/build"
)

type Sentry struct {
	disabled bool

	dsn string
}

func NewSentry(dsn string) *Sentry {
	return &Sentry{
		disabled: Disabled(dsn),
		dsn:      dsn,
	}
}

func (s *Sentry) Init(appName, appVersion, executionID string) {
	if s.disabled {
		return
	}

	sentrySyncTransport := sentry.NewHTTPSyncTransport()
	sentrySyncTransport.Timeout = time.Second * 2
	release := appName + "@" + appVersion
	environment := "production"
	if build.IsDev {
		environment = "development"
	}

	_ = sentry.Init(sentry.ClientOptions{
		AttachStacktrace: true,
		Dsn:              s.dsn,
		Environment:      environment,
		Release:          release,
		Transport:        sentrySyncTransport,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Error messages may contain user ids or emails.
			for i := range event.Exception {
				event.Exception[i].Value = ""
			}
			event.EventID = sentry.EventID(executionID)
			return event
		},
	})
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: DeviceID()})
		scope.SetContext("os", map[string]interface{}{
			"name": build.OS(),
		})
	})
}

// CaptureException reports runErr and returns the Sentry event id, or "" if
// nothing was sent.
func (s *Sentry) CaptureException(command string, runErr error) string {
	if s.disabled || runErr == nil {
		return ""
	}
	defer sentry.Flush(2 * time.Second)

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("command", command)
	})
	eventIDPointer := sentry.CaptureException(runErr)
	if eventIDPointer == nil {
		return ""
	}
	return string(*eventIDPointer)
}
