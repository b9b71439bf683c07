// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package telemetry

import (
	"io"
	"log"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
	"github.com/samber/lo"
	segment "github.com/segmentio/analytics-go"

	"go.jetify.com/nps/internal/build"
	"go.jetify.com/nps/internal/envir"
)

// ExecutionID identifies this invocation of nps. It is shared by the Segment
// event and the Sentry report of the same command.
var ExecutionID = strings.ReplaceAll(uuid.NewString(), "-", "")

// Event contains common fields used in our segment events.
type Event struct {
	AnonymousID string
	AppName     string
	AppVersion  string
	Command     string
	Duration    time.Duration
	Failed      bool
	OsName      string
	// SignedIn is whether a primary user was signed in. User ids are never
	// sent.
	SignedIn bool
}

// Disabled reports whether telemetry should be skipped for this key.
func Disabled(key string) bool {
	return envir.DoNotTrack() || key == ""
}

// NewSegmentClient returns a client object to use for segment logging.
// Callers are responsible for calling client.Close().
func NewSegmentClient(telemetryKey string) segment.Client {
	segmentClient, _ := segment.NewWithConfig(telemetryKey, segment.Config{
		BatchSize: 1, /* no batching */
		// Discard logs:
		Logger:  segment.StdLogger(log.New(io.Discard, "" /* prefix */, 0)),
		Verbose: false,
	})

	return segmentClient
}

// NewEvent fills in the fields shared by every event.
func NewEvent(command string, duration time.Duration, failed, signedIn bool) Event {
	return Event{
		AnonymousID: DeviceID(),
		AppName:     build.AppName,
		AppVersion:  build.Version,
		Command:     command,
		Duration:    duration,
		Failed:      failed,
		OsName:      build.OS(),
		SignedIn:    signedIn,
	}
}

// Track sends evt to Segment. Telemetry is best effort: errors are ignored.
func Track(telemetryKey string, evt Event) {
	if Disabled(telemetryKey) {
		return
	}
	client := NewSegmentClient(telemetryKey)
	defer func() {
		_ = client.Close()
	}()

	_ = client.Enqueue(segment.Track{
		AnonymousId: evt.AnonymousID,
		Event:       "Command Executed",
		Context: &segment.Context{
			Device: segment.DeviceInfo{Id: evt.AnonymousID},
			App:    segment.AppInfo{Name: evt.AppName, Version: evt.AppVersion},
			OS:     segment.OSInfo{Name: evt.OsName},
		},
		Properties: Properties(evt),
	})
}

// Properties returns the Segment properties for evt.
func Properties(evt Event) segment.Properties {
	return segment.NewProperties().
		Set("command", evt.Command).
		Set("duration", evt.Duration.Milliseconds()).
		Set("failed", evt.Failed).
		Set("signed_in", lo.Ternary(evt.SignedIn, "true", "false")).
		Set("execution_id", ExecutionID)
}

func DeviceID() string {
	salt := "5f0c4e4b-6f7e-4d19-9a57-0d3f2a6c8e21"
	hashedID, _ := machineid.ProtectedID(salt) // hashed, non-identifiable
	return hashedID
}
