// SPDX-License-Identifier: MPL-2.0

// Package version resolves the syncbin version string shown by --version.
package version

import (
	"os"
	"path/filepath"
	"strings"

	"syncbin-cli/internal/config"
)

// Fallback is reported when neither version.txt nor a build version exists.
const Fallback = "0.0"

// Build is set with -ldflags "-X syncbin-cli/internal/version.Build=...".
var Build = ""

// Get returns the trimmed contents of version.txt in the syncbin checkout,
// else Build, else Fallback.
func Get() string {
	return FromFile(filepath.Join(config.SyncbinRepoDir(), "version.txt"))
}

// FromFile is Get with an explicit version.txt location.
func FromFile(path string) string {
	if data, err := os.ReadFile(path); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	if Build != "" {
		return Build
	}
	return Fallback
}

// String formats the --version line for a tool: "<tool> from fenhl/syncbin <version>".
func String(tool string) string {
	return tool + " from fenhl/syncbin " + Get()
}
