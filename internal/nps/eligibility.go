// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

// Package nps decides whether the signed-in user should be asked for NPS
// feedback.
package nps

import (
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/flow"
	"go.jetify.com/nps/internal/goutil"
	"go.jetify.com/nps/internal/session"
)

// PrimaryUserSource returns the primary user, or nothing when nobody is
// signed in.
type PrimaryUserSource func() flow.Flow[goutil.Optional[session.User]]

// FeatureSource returns the state of a per-user feature flag.
type FeatureSource func(userID string, id featureflag.ID) flow.Flow[featureflag.State]

// ObserveEligibility combines the primary user, their NPSFeedback flag and
// the global NPS switch into a single eligibility signal.
type ObserveEligibility struct {
	observePrimaryUser PrimaryUserSource
	observeFeature     FeatureSource
	npsEnabled         func() bool
}

func NewObserveEligibility(
	observePrimaryUser PrimaryUserSource,
	observeFeature FeatureSource,
	npsEnabled func() bool,
) *ObserveEligibility {
	return &ObserveEligibility{
		observePrimaryUser: observePrimaryUser,
		observeFeature:     observeFeature,
		npsEnabled:         npsEnabled,
	}
}

// Observe emits true while there is a primary user, the NPS switch is on and
// that user's NPSFeedback flag is on, and false otherwise. The switch is read
// once per subscription. Each primary user emission replaces the previous
// user's flag subscription. The flow completes with the primary user flow and
// fails with any error from either source.
func (o *ObserveEligibility) Observe() flow.Flow[bool] {
	return flow.Defer(func() flow.Flow[bool] {
		enabled := o.npsEnabled()
		return flow.SwitchMap(o.observePrimaryUser(), func(primary goutil.Optional[session.User]) flow.Flow[bool] {
			user, err := primary.Get()
			if err != nil || !enabled {
				debug.Log("nps: not eligible (signed in: %t, switch on: %t)", primary.IsPresent(), enabled)
				return flow.Of(false)
			}
			return flow.Map(o.observeFeature(user.ID, featureflag.NPSFeedback), featureflag.State.Enabled)
		})
	})
}
