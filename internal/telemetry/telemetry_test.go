package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabled(t *testing.T) {
	t.Setenv("DO_NOT_TRACK", "")
	assert.True(t, Disabled(""))
	assert.False(t, Disabled("key"))

	t.Setenv("DO_NOT_TRACK", "1")
	assert.True(t, Disabled("key"))
}

func TestProperties(t *testing.T) {
	evt := Event{Command: "nps eligible", Duration: 1500 * time.Millisecond, SignedIn: true}
	props := Properties(evt)

	assert.Equal(t, "nps eligible", props["command"])
	assert.Equal(t, int64(1500), props["duration"])
	assert.Equal(t, false, props["failed"])
	assert.Equal(t, "true", props["signed_in"])
	assert.Equal(t, ExecutionID, props["execution_id"])
}

func TestDisabledSentrySendsNothing(t *testing.T) {
	s := NewSentry("")
	s.Init("nps", "0.0.0-dev", ExecutionID)
	assert.Empty(t, s.CaptureException("nps eligible", errors.New("fake error")))
}

func TestExecutionID(t *testing.T) {
	assert.Len(t, ExecutionID, 32)
	assert.NotContains(t, ExecutionID, "-")
}
