package nps

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/flow"
	"go.jetify.com/nps/internal/goutil"
	"go.jetify.com/nps/internal/session"
)

var primaryUser = session.User{ID: "u1", Email: "u1@example.com"}

func primaryUsers(users ...goutil.Optional[session.User]) PrimaryUserSource {
	return func() flow.Flow[goutil.Optional[session.User]] { return flow.Of(users...) }
}

func signedIn(u session.User) goutil.Optional[session.User] { return goutil.NewOptional(u) }

func signedOut() goutil.Optional[session.User] { return goutil.Empty[session.User]() }

// perUserFlag serves NPSFeedback with the given default and records lookups.
type perUserFlag struct {
	enabled map[string]bool
	lookups []string
}

func (f *perUserFlag) observe(userID string, id featureflag.ID) flow.Flow[featureflag.State] {
	f.lookups = append(f.lookups, userID+"/"+string(id))
	state := featureflag.Default(userID, id)
	state.DefaultValue = f.enabled[userID]
	return flow.Of(state)
}

func switchValue(v bool) func() bool { return func() bool { return v } }

func collect(t *testing.T, f flow.Flow[bool]) []bool {
	t.Helper()
	got, err := flow.Collect(context.Background(), f)
	require.NoError(t, err)
	return got
}

func TestObserveEligibility(t *testing.T) {
	tests := []struct {
		name        string
		user        goutil.Optional[session.User]
		npsEnabled  bool
		flag        bool
		want        bool
		wantLookups []string
	}{
		{
			name:       "false when primary user is absent",
			user:       signedOut(),
			npsEnabled: true,
			want:       false,
		},
		{
			name:       "false when global switch is off",
			user:       signedIn(primaryUser),
			npsEnabled: false,
			flag:       true,
			want:       false,
		},
		{
			name:        "false when per-user flag is off",
			user:        signedIn(primaryUser),
			npsEnabled:  true,
			flag:        false,
			want:        false,
			wantLookups: []string{"u1/NPSFeedback"},
		},
		{
			name:        "true when everything is on",
			user:        signedIn(primaryUser),
			npsEnabled:  true,
			flag:        true,
			want:        true,
			wantLookups: []string{"u1/NPSFeedback"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &perUserFlag{enabled: map[string]bool{primaryUser.ID: tt.flag}}
			sut := NewObserveEligibility(primaryUsers(tt.user), flags.observe, switchValue(tt.npsEnabled))

			// A single emission, then completion.
			assert.Equal(t, []bool{tt.want}, collect(t, sut.Observe()))
			if diff := cmp.Diff(tt.wantLookups, flags.lookups); diff != "" {
				t.Errorf("flag lookups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObserveEligibilityOverrideBeatsDefault(t *testing.T) {
	observe := func(userID string, id featureflag.ID) flow.Flow[featureflag.State] {
		return flow.Of(featureflag.WithValue(userID, id, true))
	}
	sut := NewObserveEligibility(primaryUsers(signedIn(primaryUser)), observe, switchValue(true))
	assert.Equal(t, []bool{true}, collect(t, sut.Observe()))
}

func TestObserveEligibilityFollowsEveryEmission(t *testing.T) {
	other := session.User{ID: "u2"}
	flags := &perUserFlag{enabled: map[string]bool{primaryUser.ID: true, other.ID: false}}
	sut := NewObserveEligibility(
		primaryUsers(signedIn(primaryUser), signedOut(), signedIn(other)),
		flags.observe,
		switchValue(true),
	)

	got := collect(t, sut.Observe())
	// Earlier inner flows may be superseded before they emit; the last user
	// always gets through.
	require.NotEmpty(t, got)
	assert.False(t, got[len(got)-1])
}

func TestObserveEligibilityReadsSwitchOncePerSubscription(t *testing.T) {
	calls := 0
	npsEnabled := func() bool {
		calls++
		return true
	}
	flags := &perUserFlag{enabled: map[string]bool{primaryUser.ID: true}}
	sut := NewObserveEligibility(
		primaryUsers(signedIn(primaryUser), signedIn(primaryUser), signedIn(primaryUser)),
		flags.observe,
		npsEnabled,
	)

	assert.Equal(t, 0, calls, "nothing happens before subscribing")
	collect(t, sut.Observe())
	assert.Equal(t, 1, calls)
	collect(t, sut.Observe())
	assert.Equal(t, 2, calls)
}

func TestObserveEligibilityCancelsPreviousUserFlag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users := make(chan goutil.Optional[session.User])
	observeUsers := func() flow.Flow[goutil.Optional[session.User]] {
		return func(ctx context.Context, emit func(goutil.Optional[session.User]) error) error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case u, ok := <-users:
					if !ok {
						return nil
					}
					if err := emit(u); err != nil {
						return err
					}
				}
			}
		}
	}

	cancelled := make(chan string, 2)
	observeFlag := func(userID string, id featureflag.ID) flow.Flow[featureflag.State] {
		return func(ctx context.Context, emit func(featureflag.State) error) error {
			if err := emit(featureflag.WithValue(userID, id, userID == "u1")); err != nil {
				return err
			}
			<-ctx.Done()
			cancelled <- userID
			return ctx.Err()
		}
	}

	sut := NewObserveEligibility(observeUsers, observeFlag, switchValue(true))
	out := make(chan bool)
	errc := make(chan error, 1)
	go func() {
		errc <- sut.Observe()(ctx, func(v bool) error {
			select {
			case out <- v:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	next := func() bool {
		t.Helper()
		select {
		case v := <-out:
			return v
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for eligibility")
		}
		return false
	}

	users <- signedIn(session.User{ID: "u1"})
	assert.True(t, next())

	users <- signedIn(session.User{ID: "u2"})
	assert.Equal(t, "u1", <-cancelled)
	assert.False(t, next())

	users <- signedOut()
	assert.Equal(t, "u2", <-cancelled)
	assert.False(t, next())

	close(users)
	assert.NoError(t, <-errc)
}

func TestObserveEligibilityPropagatesErrors(t *testing.T) {
	errUsers := errors.New("session unavailable")
	errFlags := errors.New("flags unavailable")

	t.Run("primary user", func(t *testing.T) {
		observeUsers := func() flow.Flow[goutil.Optional[session.User]] {
			return flow.Fail[goutil.Optional[session.User]](errUsers)
		}
		flags := &perUserFlag{}
		sut := NewObserveEligibility(observeUsers, flags.observe, switchValue(true))
		_, err := flow.Collect(context.Background(), sut.Observe())
		assert.ErrorIs(t, err, errUsers)
	})

	t.Run("feature flag", func(t *testing.T) {
		observeFlag := func(string, featureflag.ID) flow.Flow[featureflag.State] {
			return flow.Fail[featureflag.State](errFlags)
		}
		sut := NewObserveEligibility(primaryUsers(signedIn(primaryUser)), observeFlag, switchValue(true))
		_, err := flow.Collect(context.Background(), sut.Observe())
		assert.ErrorIs(t, err, errFlags)
	})

	t.Run("feature flag not consulted when signed out", func(t *testing.T) {
		observeFlag := func(string, featureflag.ID) flow.Flow[featureflag.State] {
			return flow.Fail[featureflag.State](errFlags)
		}
		sut := NewObserveEligibility(primaryUsers(signedOut()), observeFlag, switchValue(true))
		assert.Equal(t, []bool{false}, collect(t, sut.Observe()))
	})
}
