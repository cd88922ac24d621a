// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd

package diskspace

import (
	"context"
	"fmt"

	"syncbin-cli/internal/runner"

	"golang.org/x/sys/unix"
)

// StatfsProber reads usage with statfs(2).
type StatfsProber struct{}

// NewProber returns the native prober; r is unused on unix.
func NewProber(runner.Runner) Prober {
	return StatfsProber{}
}

func (StatfsProber) Usage(ctx context.Context, path string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize) //nolint:gosec // never negative
	return Usage{
		Total:     uint64(st.Blocks) * bsize,
		Available: uint64(st.Bavail) * bsize,
	}, nil
}
