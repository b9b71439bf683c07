// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package configfile

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

const Indent = "  "

// MarshalJSON marshals the given value to JSON. It does not HTML escape and
// adds standard indentation.
func MarshalJSON(v any) ([]byte, error) {
	buff := &bytes.Buffer{}
	e := json.NewEncoder(buff)
	e.SetIndent("", Indent)
	e.SetEscapeHTML(false)
	if err := e.Encode(v); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimRight(buff.Bytes(), "\n"), nil
}

// unmarshalJSON accepts JSON with comments and trailing commas, since these
// files are meant to be edited by hand.
func unmarshalJSON(data []byte, v any) error {
	root, err := hujson.Parse(data)
	if err != nil {
		return errors.WithStack(err)
	}
	root.Standardize()
	return json.Unmarshal(root.Pack(), v)
}
