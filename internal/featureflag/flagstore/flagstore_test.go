package flagstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/debug"
	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/flow"
)

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	return s
}

func TestGetDefaultsWithoutFile(t *testing.T) {
	s := newTestStore(t, "features.json")
	state, err := s.Get("alice", featureflag.NPSFeedback)
	require.NoError(t, err)
	assert.Equal(t, featureflag.Default("alice", featureflag.NPSFeedback), state)
}

func TestSetAndUnset(t *testing.T) {
	for _, name := range []string{"features.json", "features.yaml", "features.toml"} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t, name)
			require.NoError(t, s.Set("alice", featureflag.NPSFeedback, true))
			require.NoError(t, s.Set("bob", featureflag.NPSFeedback, false))

			alice, err := s.Get("alice", featureflag.NPSFeedback)
			require.NoError(t, err)
			assert.True(t, alice.Enabled())
			assert.True(t, alice.Value.IsPresent())

			bob, err := s.Get("bob", featureflag.NPSFeedback)
			require.NoError(t, err)
			assert.False(t, bob.Enabled())
			assert.True(t, bob.Value.IsPresent())

			require.NoError(t, s.Unset("alice", featureflag.NPSFeedback))
			alice, err = s.Get("alice", featureflag.NPSFeedback)
			require.NoError(t, err)
			assert.False(t, alice.Value.IsPresent())

			// Unsetting twice is fine.
			require.NoError(t, s.Unset("alice", featureflag.NPSFeedback))
		})
	}
}

func TestOverridesAreScopedToUser(t *testing.T) {
	s := newTestStore(t, "features.json")
	require.NoError(t, s.Set("alice", featureflag.NPSFeedback, true))

	bob, err := s.Get("bob", featureflag.NPSFeedback)
	require.NoError(t, err)
	assert.False(t, bob.Enabled())
}

func TestSetRejectsUnknownFeature(t *testing.T) {
	s := newTestStore(t, "features.json")
	err := s.Set("alice", "DarkMode", true)
	require.Error(t, err)
	_, isUserErr := usererr.Extract(err)
	assert.True(t, isUserErr)

	assert.Error(t, s.Set("", featureflag.NPSFeedback, true))
}

func TestList(t *testing.T) {
	s := newTestStore(t, "features.json")
	require.NoError(t, s.Set("alice", featureflag.NPSFeedback, true))

	states, err := s.List("alice")
	require.NoError(t, err)
	require.Len(t, states, len(featureflag.IDs()))
	assert.Equal(t, featureflag.WithValue("alice", featureflag.NPSFeedback, true), states[0])
}

func TestObserveSnapshot(t *testing.T) {
	s := newTestStore(t, "features.json")
	require.NoError(t, s.Set("alice", featureflag.NPSFeedback, true))

	got, err := flow.Collect(context.Background(), s.Observe("alice", featureflag.NPSFeedback, false))
	require.NoError(t, err)
	assert.Equal(t, []featureflag.State{featureflag.WithValue("alice", featureflag.NPSFeedback, true)}, got)
}

func TestObserveWatch(t *testing.T) {
	s := newTestStore(t, "features.json")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := make(chan featureflag.State, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- s.Observe("alice", featureflag.NPSFeedback, true)(ctx, func(st featureflag.State) error {
			states <- st
			return nil
		})
	}()

	next := func() featureflag.State {
		t.Helper()
		select {
		case st := <-states:
			return st
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for flag state")
		}
		return featureflag.State{}
	}

	assert.False(t, next().Enabled())

	// Another user's override doesn't produce a new value for alice.
	require.NoError(t, s.Set("bob", featureflag.NPSFeedback, true))
	require.NoError(t, s.Set("alice", featureflag.NPSFeedback, true))
	assert.True(t, next().Enabled())

	require.NoError(t, s.Set("alice", featureflag.NPSFeedback, false))
	st := next()
	assert.False(t, st.Enabled())
	assert.True(t, st.Value.IsPresent())

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestReadsAreTimed(t *testing.T) {
	buf := &bytes.Buffer{}
	debug.EnableTimers(buf, 0)
	t.Cleanup(func() { debug.EnableTimers(nil, time.Millisecond) })

	s := newTestStore(t, "features.json")
	_, err := s.Get("alice", featureflag.NPSFeedback)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "flagstore.(*Store).read took")
}
