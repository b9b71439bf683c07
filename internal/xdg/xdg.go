// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package xdg resolves per-user directories following the XDG base directory
// specification, falling back to the conventional locations under $HOME.
package xdg

import (
	"os"
	"path/filepath"

	"go.jetify.com/nps/internal/envir"
)

// appDir is the subdirectory nps uses inside each XDG base directory.
const appDir = "nps"

func ConfigSubpath(subpath string) string {
	return filepath.Join(configDir(), subpath)
}

func StateSubpath(subpath string) string {
	return filepath.Join(stateDir(), subpath)
}

// AppConfigPath returns the path of name inside nps's config directory.
func AppConfigPath(name string) string { return ConfigSubpath(filepath.Join(appDir, name)) }

// AppStatePath returns the path of name inside nps's state directory.
func AppStatePath(name string) string { return StateSubpath(filepath.Join(appDir, name)) }

func configDir() string { return resolveDir(envir.XDGConfigHome, ".config") }
func stateDir() string  { return resolveDir(envir.XDGStateHome, ".local/state") }

func resolveDir(envvar, defaultPath string) string {
	dir := os.Getenv(envvar)
	if dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}

	return filepath.Join(home, defaultPath)
}
