// Package cmdtest provides a testscript-based test harness for the ui5ls
// command line tools.
//
// It uses txtar format test files to specify input files and expected outputs,
// making it easy to write comprehensive CLI tests.
//
// Example test file (testdata/ui5check/unknown_class.txtar):
//
//	# ui5check reports unknown classes
//	! exec ui5check -metadata api webapp
//	stdout '\[1001\]'
//
//	-- api/sap.m.json --
//	{"library": "sap.m", "symbols": []}
//	-- webapp/view/Main.view.xml --
//	<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Buton/></mvc:View>
package cmdtest

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/albertocavalcante/ui5ls/internal/cmd/ui5check"
	"github.com/albertocavalcante/ui5ls/internal/cmd/ui5ls"
)

// Run executes the testscript tests in the given directory.
func Run(t *testing.T, dir string) {
	testscript.Run(t, testscript.Params{
		Dir: dir,
		Setup: func(env *testscript.Env) error {
			// Keep config discovery inside the script's work directory.
			env.Setenv("UI5LS_CONFIG", "")
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}

// Main is the TestMain function that should be called from test files.
// It sets up the CLI tools as testscript commands.
func Main(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"ui5check": wrapRun(ui5check.Run),
		"ui5ls":    wrapRun(ui5ls.Run),
	}))
}

// wrapRun wraps a Run(args []string) int function to func() int for testscript.
// The args are taken from os.Args[1:].
func wrapRun(run func(args []string) int) func() int {
	return func() int {
		return run(os.Args[1:])
	}
}
