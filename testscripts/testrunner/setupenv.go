package testrunner

import (
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/testscript"
)

func setupTestEnv(env *testscript.Env) error {
	// nps keeps its session in XDG_STATE_HOME and flag overrides in
	// XDG_CONFIG_HOME. Point both into the test's working directory so
	// scripts never see the developer's own files.
	for _, v := range []string{"XDG_STATE_HOME", "XDG_CONFIG_HOME"} {
		dir := filepath.Join(env.WorkDir, "."+v)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		env.Setenv(v, dir)
	}
	env.Setenv("DO_NOT_TRACK", "1")
	return nil
}
