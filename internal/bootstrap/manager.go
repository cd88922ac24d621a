// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"syncbin-cli/internal/issue"
)

// Manager names an OS package manager.
type Manager string

const (
	AptGet Manager = "apt-get"
	Brew   Manager = "brew"
)

// detectionOrder is the order in which package managers are looked up on PATH.
var detectionOrder = []Manager{AptGet, Brew}

// InstallCommand returns the argv installing pkgs. apt-get runs through sudo.
func (m Manager) InstallCommand(pkgs []string) []string {
	switch m {
	case AptGet:
		return append([]string{"sudo", "apt-get", "install", "-y"}, pkgs...)
	default:
		return append([]string{string(m), "install"}, pkgs...)
	}
}

// Manager returns the configured package manager, or the first one found on
// PATH. The detection result is cached.
func (e *Env) Manager() (Manager, error) {
	if e.PackageManager != "" {
		return e.PackageManager, nil
	}
	if e.detected != "" {
		return e.detected, nil
	}
	for _, m := range detectionOrder {
		if _, err := e.Runner.LookPath(string(m)); err == nil {
			e.detected = m
			return m, nil
		}
	}
	return "", issue.NewErrorContext().
		WithOperation("detect package manager").
		WithSuggestion("install apt-get or Homebrew").
		WithSuggestion("set bootstrap.package_manager in syncbin.json").
		WithIssue(issue.PackageManagerMissingId).
		BuildError()
}
