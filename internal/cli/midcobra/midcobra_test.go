package midcobra

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jetify.com/nps/internal/cli/usererr"
	"go.jetify.com/nps/internal/debug"
)

type recordingMiddleware struct {
	name  string
	calls *[]string
	err   error
}

func (r *recordingMiddleware) preRun(*cobra.Command, []string) {
	*r.calls = append(*r.calls, "pre:"+r.name)
}

func (r *recordingMiddleware) postRun(_ *cobra.Command, _ []string, runErr error) {
	*r.calls = append(*r.calls, "post:"+r.name)
	r.err = runErr
}

func newCommand(runErr error) *cobra.Command {
	return &cobra.Command{
		Use:           "nps",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(*cobra.Command, []string) error {
			return runErr
		},
	}
}

func TestExecuteRunsMiddlewaresAroundCommand(t *testing.T) {
	var calls []string
	first := &recordingMiddleware{name: "first", calls: &calls}
	second := &recordingMiddleware{name: "second", calls: &calls}

	exe := New(newCommand(nil))
	exe.AddMiddleware(first, second)

	assert.Equal(t, 0, exe.Execute(context.Background(), nil))
	assert.Equal(t, []string{"pre:first", "pre:second", "post:second", "post:first"}, calls)
}

func TestExecuteReturnsErrorCode(t *testing.T) {
	var calls []string
	rec := &recordingMiddleware{name: "rec", calls: &calls}
	errBoom := errors.New("boom")

	exe := New(newCommand(errBoom))
	exe.AddMiddleware(rec)

	assert.Equal(t, 1, exe.Execute(context.Background(), nil))
	assert.ErrorIs(t, rec.err, errBoom)
}

func TestExecuteTreatsCancellationAsSuccess(t *testing.T) {
	exe := New(newCommand(errors.WithStack(context.Canceled)))
	assert.Equal(t, 0, exe.Execute(context.Background(), nil))
}

func TestDebugMiddlewarePrintsUserErrors(t *testing.T) {
	color.NoColor = true
	cmd := newCommand(nil)
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)

	d := NewDebugMiddleware()
	d.AttachToFlag(cmd.PersistentFlags(), "debug")

	d.postRun(cmd, nil, usererr.New("nobody is signed in"))
	assert.Equal(t, "\nError: nobody is signed in\n\n", stderr.String())

	stderr.Reset()
	d.postRun(cmd, nil, usererr.NewWarning("flag file is empty"))
	assert.Equal(t, "Warning: flag file is empty\n", stderr.String())

	stderr.Reset()
	d.postRun(cmd, nil, usererr.WithHint(usererr.New("nobody is signed in"), "nps auth login <user-id>"))
	assert.Equal(t, "\nError: nobody is signed in\n\nRun `nps auth login <user-id>` and try again.\n\n", stderr.String())

	stderr.Reset()
	d.postRun(cmd, nil, nil)
	assert.Empty(t, stderr.String())
}

func TestDebugMiddlewareLogsStateFiles(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	sessionPath := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(sessionPath, []byte("{}"), 0o600))
	featuresPath := filepath.Join(dir, "features.json")

	logs := &bytes.Buffer{}
	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prevLogger) })

	cmd := newCommand(nil)
	cmd.SetErr(&bytes.Buffer{})
	d := NewDebugMiddleware(
		StateFile{Name: "session_file", Path: func() string { return sessionPath }},
		StateFile{Name: "features_file", Path: func() string { return featuresPath }},
	)
	d.AttachToFlag(cmd.PersistentFlags(), "debug")
	require.NoError(t, cmd.PersistentFlags().Set("debug", "true"))
	d.preRun(cmd, nil)
	t.Cleanup(func() { debug.SetEnabled(false) })

	d.postRun(cmd, nil, errors.New("corrupt session"))

	assert.Contains(t, logs.String(), "session_file.path="+sessionPath)
	assert.Contains(t, logs.String(), "session_file.exists=true")
	assert.Contains(t, logs.String(), "features_file.path="+featuresPath)
	assert.Contains(t, logs.String(), "features_file.exists=false")
}

func TestDebugMiddlewareQuietWithoutDebug(t *testing.T) {
	logs := &bytes.Buffer{}
	prevLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prevLogger) })
	debug.SetEnabled(false)

	cmd := newCommand(nil)
	cmd.SetErr(&bytes.Buffer{})
	d := NewDebugMiddleware(StateFile{Name: "session_file", Path: func() string { return "unused" }})
	d.postRun(cmd, nil, errors.New("boom"))

	assert.Empty(t, logs.String())
}

func TestTelemetryDisabledWithoutKeys(t *testing.T) {
	m := Telemetry(&TelemetryOpts{AppName: "nps"}).(*telemetryMiddleware)
	assert.True(t, m.disabled)

	// Must be safe to run without any backend configured.
	cmd := newCommand(nil)
	m.preRun(cmd, nil)
	m.postRun(cmd, nil, errors.New("boom"))
}

func TestTraceMiddlewareWritesTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eligible.trace")
	root := newCommand(nil)
	root.AddCommand(&cobra.Command{Use: "eligible", RunE: func(*cobra.Command, []string) error { return nil }})

	tm := &TraceMiddleware{}
	tm.AttachToFlag(root.PersistentFlags(), "trace")
	exe := New(root)
	exe.AddMiddleware(tm)

	assert.Equal(t, 0, exe.Execute(context.Background(), []string{"eligible", "--trace=" + path}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestTraceMiddlewareWarnsWhenFileCannotBeCreated(t *testing.T) {
	color.NoColor = true
	cmd := newCommand(nil)
	stderr := &bytes.Buffer{}
	cmd.SetErr(stderr)
	cmd.SetContext(context.Background())

	tm := &TraceMiddleware{}
	tm.AttachToFlag(cmd.PersistentFlags(), "trace")
	require.NoError(t, cmd.PersistentFlags().Set("trace", filepath.Join(t.TempDir(), "missing", "nps.trace")))

	tm.preRun(cmd, nil)
	tm.postRun(cmd, nil, nil)

	assert.Contains(t, stderr.String(), "Warning: not tracing:")
}
