// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package configfile reads and writes the small state and config files nps
// keeps on disk. The encoding is picked from the file extension.
package configfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"go.jetify.com/nps/internal/fileutil"
)

func Marshal(valuePtr any, extension string) ([]byte, error) {
	switch extension {
	case ".json":
		return MarshalJSON(valuePtr)
	case ".yml", ".yaml":
		return marshalYaml(valuePtr)
	case ".toml":
		return marshalToml(valuePtr)
	}
	return nil, errors.Errorf("Unsupported file format '%s' for config file", extension)
}

func Unmarshal(data []byte, extension string, valuePtr any) error {
	switch extension {
	case ".json":
		return errors.WithStack(unmarshalJSON(data, valuePtr))
	case ".yml", ".yaml":
		return errors.WithStack(unmarshalYaml(data, valuePtr))
	case ".toml":
		return errors.WithStack(unmarshalToml(data, valuePtr))
	}
	return errors.Errorf("Unsupported file format '%s' for config file", extension)
}

func ParseFile(path string, valuePtr any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	return Unmarshal(data, filepath.Ext(path), valuePtr)
}

// WriteFile encodes value according to path's extension and atomically
// replaces the file.
func WriteFile(path string, value any) error {
	data, err := Marshal(value, filepath.Ext(path))
	if err != nil {
		return errors.WithStack(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return fileutil.WriteFileAtomic(path, data, 0o600)
}

func IsSupportedExtension(ext string) bool {
	switch ext {
	case ".json", ".yml", ".yaml", ".toml":
		return true
	default:
		return false
	}
}
