// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	commands := map[string]func(){
		"syncbin": func() { os.Exit(Main()) },
	}
	// Register the multi-call names too, so scripts exercise argv[0] dispatch.
	for name := range multiCall {
		commands[name] = func() { os.Exit(Main()) }
	}
	testscript.Main(m, commands)
}

// TestScripts runs the testscript files in testdata/script against the
// in-process syncbin entry point.
func TestScripts(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("testdata", "script"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("HOME", env.WorkDir)
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_DATA_HOME", filepath.Join(env.WorkDir, ".local", "share"))
			env.Setenv("GITDIR", filepath.Join(env.WorkDir, "git"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
