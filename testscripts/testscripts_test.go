package testscripts

import (
	"os"
	"testing"

	"go.jetify.com/nps/testscripts/testrunner"
)

func TestScripts(t *testing.T) {
	testrunner.RunTestscripts(t, ".")
}

func TestMain(m *testing.M) {
	os.Exit(testrunner.Main(m))
}
