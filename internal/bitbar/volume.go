// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"context"
	"strconv"
	"strings"

	"syncbin-cli/internal/runner"
)

// Glyphs for the volume plugin.
const (
	MutedGlyph = "🔇"
	LowGlyph   = "🔈"
	HighGlyph  = "🔊"
)

const (
	lowVolume  = 6
	highVolume = 13
)

type (
	// VolumeState is the output volume as reported by AppleScript.
	VolumeState struct {
		Muted bool
		Level int
	}

	// VolumeSource reads the output volume.
	VolumeSource interface {
		Volume(ctx context.Context) (VolumeState, error)
	}

	// OSAScript reads volume settings through osascript.
	OSAScript struct {
		Runner runner.Runner
	}
)

// Volume implements VolumeSource.
func (o OSAScript) Volume(ctx context.Context) (VolumeState, error) {
	muted, err := o.Runner.Output(ctx, runner.Cmd{Name: "osascript", Args: []string{"-e", "output muted of (get volume settings)"}})
	if err != nil {
		return VolumeState{}, err
	}
	level, err := o.Runner.Output(ctx, runner.Cmd{Name: "osascript", Args: []string{"-e", "output volume of (get volume settings)"}})
	if err != nil {
		return VolumeState{}, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(level)))
	if err != nil {
		return VolumeState{}, err
	}
	return VolumeState{Muted: string(muted) == "true\n", Level: n}, nil
}

// Volume shows a glyph when muted, low or high, and nothing in between.
func Volume(w *Writer, s VolumeState) {
	switch {
	case s.Muted:
		w.Item(MutedGlyph)
	case s.Level < lowVolume:
		w.Item(LowGlyph)
	case s.Level > highVolume:
		w.Item(HighGlyph)
	}
}
