// SPDX-License-Identifier: MPL-2.0

package diskspace

import (
	"fmt"
	"io"

	"syncbin-cli/pkg/types"
)

type (
	// Usage is a filesystem's size and the space available to unprivileged
	// users, in bytes.
	Usage struct {
		Total     uint64
		Available uint64
	}

	// Thresholds decide whether Usage is worth reporting. With neither limit
	// set every usage is reported.
	Thresholds struct {
		MinSpace    uint64
		MinFraction float64
		HasSpace    bool
		HasFraction bool
	}

	// ReportOptions select the output format.
	ReportOptions struct {
		Bytes   bool
		Quiet   bool
		Verbose bool
	}
)

// Fraction returns Available/Total, or 0 for an empty filesystem.
func (u Usage) Fraction() float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Available) / float64(u.Total)
}

// Percent returns the available percentage rounded down.
func (u Usage) Percent() int {
	if u.Total == 0 {
		return 0
	}
	return int(100 * u.Available / u.Total)
}

// ZshThresholds are the prompt defaults: at least 1 GiB and 1%.
func ZshThresholds() Thresholds {
	return Thresholds{MinSpace: OneGig, MinFraction: 0.01, HasSpace: true, HasFraction: true}
}

// Low reports whether u falls below either limit. Without any limit it is
// always true.
func (t Thresholds) Low(u Usage) bool {
	if !t.HasSpace && !t.HasFraction {
		return true
	}
	if t.HasSpace && u.Available < t.MinSpace {
		return true
	}
	return t.HasFraction && u.Fraction() < t.MinFraction
}

// Report writes u the way the diskspace command does and returns its exit
// code. Nothing is written when u is not low; quiet mode exits 1 instead of
// writing.
func Report(w io.Writer, u Usage, t Thresholds, opts ReportOptions) types.ExitCode {
	if !t.Low(u) {
		return types.ExitSuccess
	}
	switch {
	case opts.Quiet:
		return types.ExitFailure
	case opts.Verbose:
		fmt.Fprintln(w, "Available disk space:", FormatSpace(u.Available))
		fmt.Fprintln(w, u.Available, "bytes")
		fmt.Fprintln(w, u.Percent(), "percent")
	case opts.Bytes:
		fmt.Fprintln(w, u.Available)
	default:
		fmt.Fprintf(w, "[disk: %s]\n", FormatSpace(u.Available))
	}
	return types.ExitSuccess
}
