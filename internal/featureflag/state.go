// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package featureflag

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"go.jetify.com/nps/internal/goutil"
)

// ID names a per-user feature flag.
type ID string

// NPSFeedback decides, per user, whether they may be asked for NPS feedback.
const NPSFeedback ID = "NPSFeedback"

// defaults holds every known per-user flag and the value used when the user
// has no override.
var defaults = map[ID]bool{
	NPSFeedback: false,
}

// State is the value of one flag for one user.
type State struct {
	ID           ID
	UserID       string
	Value        goutil.Optional[bool]
	DefaultValue bool
}

// Enabled returns the user's override if there is one, and the flag's default
// otherwise.
func (s State) Enabled() bool {
	return s.Value.OrElse(s.DefaultValue)
}

func (s State) String() string {
	if !s.Value.IsPresent() {
		return fmt.Sprintf("%s=%t (default)", s.ID, s.DefaultValue)
	}
	return fmt.Sprintf("%s=%t", s.ID, s.Enabled())
}

// Default returns the state of id for a user without an override.
func Default(userID string, id ID) State {
	return State{ID: id, UserID: userID, DefaultValue: defaults[id]}
}

// WithValue returns the state of id for a user who has overridden it.
func WithValue(userID string, id ID, value bool) State {
	s := Default(userID, id)
	s.Value = goutil.NewOptional(value)
	return s
}

func Known(id ID) bool {
	_, ok := defaults[id]
	return ok
}

// IDs returns the known per-user flags, sorted.
func IDs() []ID {
	ids := lo.Keys(defaults)
	slices.Sort(ids)
	return ids
}
