// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd)

package diskspace

import "syncbin-cli/internal/runner"

// NewProber falls back to df where statfs is unavailable.
func NewProber(r runner.Runner) Prober {
	return DFProber{Runner: r}
}
