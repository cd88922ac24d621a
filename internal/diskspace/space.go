// SPDX-License-Identifier: MPL-2.0

// Package diskspace formats byte counts, probes filesystem usage and decides
// when free space is low enough to report.
package diskspace

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	KiB uint64 = 1 << 10
	MiB uint64 = 1 << 20
	GiB uint64 = 1 << 30
	TiB uint64 = 1 << 40
	PiB uint64 = 1 << 50

	// OneGig is the unit of --min-space.
	OneGig = GiB
)

var (
	tiers = []struct {
		size   uint64
		suffix string
	}{
		{PiB, "PB"},
		{TiB, "TB"},
		{GiB, "GB"},
		{MiB, "MB"},
		{KiB, "KB"},
	}

	unitSizes = map[byte]uint64{'P': PiB, 'T': TiB, 'G': GiB, 'M': MiB, 'K': KiB, 'B': 1}

	spacePattern = regexp.MustCompile(`^([0-9.]+)([PTGMKB])`)
)

// FormatSpace renders b in the largest binary unit it reaches, rounded down:
// 1024 is "1KB", 1.5 GiB is "1GB". Values below 1 KiB print as the bare
// number.
func FormatSpace(b uint64) string {
	for _, tier := range tiers {
		if b >= tier.size {
			return strconv.FormatUint(b/tier.size, 10) + tier.suffix
		}
	}
	return strconv.FormatUint(b, 10)
}

// Tier returns the unit index FormatSpace picks for b: 0 for bare bytes up to
// 5 for PB.
func Tier(b uint64) int {
	for i, tier := range tiers {
		if b >= tier.size {
			return len(tiers) - i
		}
	}
	return 0
}

// ParseSpace parses df-style sizes such as "466G", "1.5T" or "512B", as well
// as plain integers (bytes). Trailing text after the unit is ignored, so
// "466Gi" parses too.
func ParseSpace(s string) (uint64, error) {
	if m := spacePattern.FindStringSubmatch(s); m != nil {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid space amount %q: %w", s, err)
		}
		return uint64(amount * float64(unitSizes[m[2][0]])), nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid space %q: %w", s, err)
	}
	return n, nil
}
