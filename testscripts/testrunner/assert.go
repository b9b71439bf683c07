package testrunner

import (
	"path/filepath"
	"strconv"

	"github.com/rogpeppe/go-internal/testscript"

	"go.jetify.com/nps/internal/featureflag"
	"go.jetify.com/nps/internal/featureflag/flagstore"
	"go.jetify.com/nps/internal/session"
)

// Custom assertions that read nps's own files inside a testscript.
var assertionMap = map[string]func(ts *testscript.TestScript, neg bool, args []string){
	"session.primary": assertPrimaryUser,
	"feature.value":   assertFeatureValue,
}

func sessionStore(script *testscript.TestScript) *session.Store {
	s, err := session.NewStore(filepath.Join(script.Getenv("XDG_STATE_HOME"), "nps", "session.json"))
	script.Check(err)
	return s
}

func flagStore(script *testscript.TestScript) *flagstore.Store {
	s, err := flagstore.New(filepath.Join(script.Getenv("XDG_CONFIG_HOME"), "nps", "features.json"))
	script.Check(err)
	return s
}

// Usage: [!] session.primary <user-id>|none
// Checks who the primary user is in the session file.
func assertPrimaryUser(script *testscript.TestScript, neg bool, args []string) {
	if len(args) != 1 {
		script.Fatalf("usage: session.primary <user-id>|none")
	}
	primary, err := sessionStore(script).Primary()
	script.Check(err)

	got := "none"
	if u, err := primary.Get(); err == nil {
		got = u.ID
	}
	if (got == args[0]) == neg {
		script.Fatalf("primary user is %s, expected %s%s", got, negation(neg), args[0])
	}
}

// Usage: [!] feature.value <user-id> <feature> <true|false|default>
// Checks a user's override for a feature in the features file. "default"
// means the user has no override.
func assertFeatureValue(script *testscript.TestScript, neg bool, args []string) {
	if len(args) != 3 {
		script.Fatalf("usage: feature.value <user-id> <feature> <true|false|default>")
	}
	state, err := flagStore(script).Get(args[0], featureflag.ID(args[1]))
	script.Check(err)

	got := "default"
	if v, err := state.Value.Get(); err == nil {
		got = strconv.FormatBool(v)
	}
	if (got == args[2]) == neg {
		script.Fatalf("%s for %s is %s, expected %s%s", args[1], args[0], got, negation(neg), args[2])
	}
}

func negation(neg bool) string {
	if neg {
		return "not "
	}
	return ""
}
