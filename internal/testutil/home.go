// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// xdgVariables are cleared by IsolateHome so config lookups only see the
// temporary home.
var xdgVariables = []string{
	"XDG_CONFIG_HOME",
	"XDG_CONFIG_DIRS",
	"XDG_DATA_HOME",
	"XDG_DATA_DIRS",
	"XDG_CACHE_HOME",
}

// SetHomeDir points HOME (USERPROFILE on Windows) at dir and returns a
// function restoring the previous value.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}

// IsolateHome gives the test a fresh home directory with no XDG overrides and
// returns its path. XDG_CONFIG_DIRS and XDG_DATA_DIRS point inside the home
// so system-wide files never leak in. It uses t.Setenv, so the test must not
// be parallel.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	t.Setenv("HOME", home)
	for _, key := range xdgVariables {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_CONFIG_DIRS", home+"/etc/xdg")
	t.Setenv("XDG_DATA_DIRS", home+"/usr/share")
	return home
}
