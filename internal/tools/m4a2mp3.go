// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"syncbin-cli/internal/runner"
)

// M4A2MP3Usage is printed by -h/--help.
const M4A2MP3Usage = `Batch-convert .m4a files to .mp3 using ffmpeg

Usage:
  m4a2mp3 [options] (<src>.m4a [<dst>.mp3])...
  m4a2mp3 [options] <directory>
  m4a2mp3 -h | --help

Options:
  -h, --help         Print this message and exit.
  --delete           Delete original files after converting.
`

type (
	// Conversion converts Src to Dst.
	Conversion struct {
		Src string
		Dst string
	}

	// ConversionPlan is the ordered list of conversions m4a2mp3 performs.
	ConversionPlan struct {
		Conversions []Conversion
		Delete      bool
		Help        bool
	}

	// PlanError reports an argument m4a2mp3 cannot use.
	PlanError struct {
		Msg string
	}
)

func (e *PlanError) Error() string { return e.Msg }

// PlanConversions reads the arguments in order. A .m4a source is converted to
// the .mp3 that follows it, or to the same name with an .mp3 extension. A
// directory adds every .m4a file in it. Converting the same source twice keeps
// its first position and the last destination.
func PlanConversions(args []string) (*ConversionPlan, error) {
	plan := &ConversionPlan{}
	index := map[string]int{}
	add := func(src, dst string) {
		if i, ok := index[src]; ok {
			plan.Conversions[i].Dst = dst
			return
		}
		index[src] = len(plan.Conversions)
		plan.Conversions = append(plan.Conversions, Conversion{Src: src, Dst: dst})
	}

	pending := ""
	flush := func() {
		if pending != "" {
			add(pending, mp3Path(pending))
			pending = ""
		}
	}

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-h", "--help":
				plan.Help = true
			case "--delete":
				plan.Delete = true
			default:
				return nil, &PlanError{Msg: "unknown option: " + arg}
			}
			continue
		}
		switch ext := filepath.Ext(arg); ext {
		case "":
			info, err := os.Stat(arg)
			if err != nil || !info.IsDir() {
				return nil, &PlanError{Msg: fmt.Sprintf("unknown file type for %q", arg)}
			}
			flush()
			sources, err := m4aFiles(arg)
			if err != nil {
				return nil, err
			}
			for _, src := range sources {
				add(src, mp3Path(src))
			}
		case ".m4a":
			flush()
			pending = arg
		case ".mp3":
			if pending == "" {
				return nil, &PlanError{Msg: fmt.Sprintf("missing source path for %q", arg)}
			}
			add(pending, arg)
			pending = ""
		default:
			return nil, &PlanError{Msg: fmt.Sprintf("unsupported file extension %q", ext)}
		}
	}
	flush()
	return plan, nil
}

func mp3Path(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".mp3"
}

func m4aFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".m4a" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}

// Convert runs ffmpeg for each conversion and stops at the first failure.
// With Delete set, each source is removed once it has been converted.
func Convert(ctx context.Context, r runner.Runner, plan *ConversionPlan, stderr io.Writer) error {
	for _, c := range plan.Conversions {
		err := runner.Check(ctx, r, runner.Cmd{
			Name:   "ffmpeg",
			Args:   []string{"-loglevel", "error", "-i", c.Src, "-acodec", "libmp3lame", "-ab", "320k", c.Dst},
			Stderr: stderr,
		})
		if err != nil {
			return fmt.Errorf("converting %s: %w", c.Src, err)
		}
		if plan.Delete {
			if err := os.Remove(c.Src); err != nil {
				return err
			}
		}
	}
	return nil
}
