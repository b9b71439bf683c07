// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package flagstore stores per-user feature flag overrides in a local file.
package flagstore

import (
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/configfile"
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/envir"
	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/filewatch"
	"go.jetify.com/nps/internal/flow"
	"go.jetify.com/nps/internal/xdg"
)

// overrides maps user id -> flag id -> value.
type overrides struct {
	Users map[string]map[featureflag.ID]bool `json:"users,omitempty" yaml:"users,omitempty" toml:"users,omitempty"`
}

type Store struct {
	path string
}

// DefaultPath is where overrides live unless NPS_FEATURES_FILE says
// otherwise.
func DefaultPath() string {
	return envir.GetValueOrDefault(envir.NPSFeaturesFile, xdg.AppConfigPath("features.json"))
}

func New(path string) (*Store, error) {
	if !configfile.IsSupportedExtension(filepath.Ext(path)) {
		return nil, usererr.New("unsupported features file %q, use .json, .yaml or .toml", path)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Get returns the state of id for userID. Unknown flags are reported with a
// false default.
func (s *Store) Get(userID string, id featureflag.ID) (featureflag.State, error) {
	o, err := s.read()
	if err != nil {
		return featureflag.State{}, err
	}
	return o.state(userID, id), nil
}

// List returns the state of every known flag for userID, sorted by flag id.
func (s *Store) List(userID string) ([]featureflag.State, error) {
	o, err := s.read()
	if err != nil {
		return nil, err
	}
	return lo.Map(featureflag.IDs(), func(id featureflag.ID, _ int) featureflag.State {
		return o.state(userID, id)
	}), nil
}

func (s *Store) Set(userID string, id featureflag.ID, value bool) error {
	if err := validate(userID, id); err != nil {
		return err
	}
	o, err := s.read()
	if err != nil {
		return err
	}
	if o.Users == nil {
		o.Users = map[string]map[featureflag.ID]bool{}
	}
	if o.Users[userID] == nil {
		o.Users[userID] = map[featureflag.ID]bool{}
	}
	o.Users[userID][id] = value
	debug.Log("flagstore: %s=%t for %s", id, value, userID)
	return configfile.WriteFile(s.path, o)
}

// Unset removes userID's override for id so the default applies again.
func (s *Store) Unset(userID string, id featureflag.ID) error {
	if err := validate(userID, id); err != nil {
		return err
	}
	o, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := o.Users[userID][id]; !ok {
		return nil
	}
	delete(o.Users[userID], id)
	if len(o.Users[userID]) == 0 {
		delete(o.Users, userID)
	}
	return configfile.WriteFile(s.path, o)
}

// Observe returns the state of id for userID as a flow. Without watch it
// emits the current state once and completes; with watch it emits again
// whenever the state changes, until the subscription is cancelled.
func (s *Store) Observe(userID string, id featureflag.ID, watch bool) flow.Flow[featureflag.State] {
	if !watch {
		return flow.Defer(func() flow.Flow[featureflag.State] {
			state, err := s.Get(userID, id)
			if err != nil {
				return flow.Fail[featureflag.State](err)
			}
			return flow.Of(state)
		})
	}
	return flow.Distinct(flow.MapErr(filewatch.Changes(s.path), func(struct{}) (featureflag.State, error) {
		return s.Get(userID, id)
	}))
}

func (s *Store) read() (*overrides, error) {
	defer debug.FunctionTimer().End()
	o := &overrides{}
	err := configfile.ParseFile(s.path, o)
	if errors.Is(err, fs.ErrNotExist) {
		return &overrides{}, nil
	}
	if err != nil {
		return nil, usererr.WithUserMessage(err, "could not read features file %s", s.path)
	}
	return o, nil
}

func (o *overrides) state(userID string, id featureflag.ID) featureflag.State {
	value, ok := o.Users[userID][id]
	if !ok {
		return featureflag.Default(userID, id)
	}
	return featureflag.WithValue(userID, id, value)
}

func validate(userID string, id featureflag.ID) error {
	if userID == "" {
		return usererr.New("user id must not be empty")
	}
	if !featureflag.Known(id) {
		return usererr.New("unknown feature %q, known features are: %v", id, featureflag.IDs())
	}
	return nil
}
