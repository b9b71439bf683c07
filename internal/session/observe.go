// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package session

import (
	"path/filepath"

	"go.jetify.com/nps/internal/filewatch"
	"go.jetify.com/nps/internal/flow"
	"go.jetify.com/nps/internal/goutil"
)

// ObservePrimaryUser returns the primary user as a flow. Without watch it
// emits the current primary user (or nothing signed in) once and completes.
// With watch it keeps emitting whenever the primary user changes, until the
// subscription is cancelled.
func (s *Store) ObservePrimaryUser(watch bool) flow.Flow[goutil.Optional[User]] {
	if !watch {
		return flow.Defer(func() flow.Flow[goutil.Optional[User]] {
			u, err := s.Primary()
			if err != nil {
				return flow.Fail[goutil.Optional[User]](err)
			}
			return flow.Of(u)
		})
	}
	return flow.Distinct(flow.MapErr(filewatch.Changes(s.path), func(struct{}) (goutil.Optional[User], error) {
		return s.Primary()
	}))
}

func extension(path string) string { return filepath.Ext(path) }
