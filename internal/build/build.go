// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package build

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"go.jetify.com/nps/internal/envir"
	"go.jetify.com/nps/internal/fileutil"
)

var forceProd, _ = strconv.ParseBool(os.Getenv(envir.NPSProd))

// Variables in this file are set via ldflags.
var (
	IsDev      = Version == "0.0.0-dev" && !forceProd
	Version    = "0.0.0-dev"
	Commit     = "none"
	CommitDate = "unknown"

	// SentryDSN is injected in release builds. It is disabled by default.
	SentryDSN = ""
	// TelemetryKey is the Segment Write Key. It is disabled by default.
	TelemetryKey = ""
)

// AppName is the name reported in telemetry and help output.
const AppName = "nps"

// User-presentable names of operating systems.
const (
	OSLinux  = "Linux"
	OSDarwin = "macOS"
	OSWSL    = "WSL"
)

var (
	osName string
	osOnce sync.Once
)

func OS() string {
	osOnce.Do(func() {
		switch runtime.GOOS {
		case "linux":
			osName = OSLinux
			if fileutil.Exists("/proc/sys/fs/binfmt_misc/WSLInterop") || fileutil.Exists("/run/WSL") {
				osName = OSWSL
			}
		case "darwin":
			osName = OSDarwin
		default:
			osName = runtime.GOOS
		}
	})
	return osName
}
