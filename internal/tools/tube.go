// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"
)

// TubeVersion is the version tube reports; it is versioned on its own.
const TubeVersion = "2.2.0"

// TubeUsage is printed by -h/--help.
const TubeUsage = `A wrapper around youtube-dl for downloading and watching YouTube videos.

Usage:
  tube [options]

Options are read one by one, each performing an action as described below.

Options:
  -D, --delete               Delete the video.
  -V, --version              Print version info.
  -d, --download             Download the video from YouTube.
  -h, --help                 Print this message.
  -l, --list                 List all downloaded or partially downloaded videos.
  -o, --open                 Open the videos directory using Finder.
  -t, --timestamp            Print a timestamp.
  -v, --video=<video-id>     Use this video for all following actions. If a command-line argument does not start with a hyphen-minus, it is also interpreted as a video id.
  -w, --watch                Open the video. This action blocks until the video is closed again.
  -W, --watch-in-background  Open the video. This action does not block and does not open a new instance of the video player app.
`

// Tube actions.
const (
	TubeDelete TubeActionKind = iota + 1
	TubeDownload
	TubeHelp
	TubeList
	TubeOpen
	TubeTimestamp
	TubeVersionAction
	TubeWatch
	TubeWatchInBackground
)

// ErrNoVideo is returned by actions that need a video when none was selected.
var ErrNoVideo = errors.New("no video specified")

type (
	// TubeActionKind identifies a tube action.
	TubeActionKind int

	// TubeAction is one parsed action with the video selected at its position.
	TubeAction struct {
		Kind  TubeActionKind
		Video string
	}

	// TubeSyntaxError reports an unparsable argument.
	TubeSyntaxError struct {
		Msg string
	}

	// Tube runs parsed actions against Dir.
	Tube struct {
		Runner runner.Runner
		// Dir is the videos directory, usually ~/Movies/tube.
		Dir    string
		Stdout io.Writer
		Stderr io.Writer
		Now    func() time.Time
	}
)

func (e *TubeSyntaxError) Error() string { return e.Msg }

var (
	tubeLong = map[string]TubeActionKind{
		"--delete":              TubeDelete,
		"--download":            TubeDownload,
		"--help":                TubeHelp,
		"--list":                TubeList,
		"--open":                TubeOpen,
		"--timestamp":           TubeTimestamp,
		"--version":             TubeVersionAction,
		"--watch":               TubeWatch,
		"--watch-in-background": TubeWatchInBackground,
	}
	tubeShort = map[byte]TubeActionKind{
		'D': TubeDelete,
		'V': TubeVersionAction,
		'd': TubeDownload,
		'h': TubeHelp,
		'l': TubeList,
		'o': TubeOpen,
		't': TubeTimestamp,
		'w': TubeWatch,
		'W': TubeWatchInBackground,
	}
)

// TubeDir returns ~/Movies/tube.
func TubeDir(home string) string {
	return filepath.Join(home, "Movies", "tube")
}

// ParseTube reads the arguments in order. Each action records the video that
// was selected before it; a later -v does not affect earlier actions.
func ParseTube(args []string) ([]TubeAction, error) {
	var (
		actions []TubeAction
		video   string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--video":
			if i+1 >= len(args) {
				return nil, &TubeSyntaxError{Msg: "Syntax error: missing video ID"}
			}
			i++
			video = args[i]
		case strings.HasPrefix(arg, "--video="):
			video = strings.TrimPrefix(arg, "--video=")
		case strings.HasPrefix(arg, "--"):
			kind, ok := tubeLong[arg]
			if !ok {
				return nil, &TubeSyntaxError{Msg: "No such action: " + arg}
			}
			actions = append(actions, TubeAction{Kind: kind, Video: video})
		case strings.HasPrefix(arg, "-"):
			letters := arg[1:]
		short:
			for j := 0; j < len(letters); j++ {
				if letters[j] == 'v' {
					switch {
					case j+1 < len(letters):
						video = letters[j+1:]
					case i+1 < len(args):
						i++
						video = args[i]
					default:
						return nil, &TubeSyntaxError{Msg: "Syntax error: missing video ID"}
					}
					break short
				}
				kind, ok := tubeShort[letters[j]]
				if !ok {
					return nil, &TubeSyntaxError{Msg: "No such action: " + string(letters[j])}
				}
				actions = append(actions, TubeAction{Kind: kind, Video: video})
			}
		default:
			video = arg
		}
	}
	return actions, nil
}

// Run performs actions in order and stops at the first failure. Watching
// without a video prints an error and carries on.
func (t Tube) Run(ctx context.Context, actions []TubeAction) (types.ExitCode, error) {
	for _, a := range actions {
		if err := t.do(ctx, a); err != nil {
			return types.ExitFailure, err
		}
	}
	return types.ExitSuccess, nil
}

func (t Tube) do(ctx context.Context, a TubeAction) error {
	switch a.Kind {
	case TubeDelete:
		if a.Video == "" {
			return ErrNoVideo
		}
		return os.Remove(filepath.Join(t.Dir, a.Video+".mp4"))
	case TubeDownload:
		if a.Video == "" {
			return ErrNoVideo
		}
		return runner.Check(ctx, t.Runner, runner.Cmd{
			Name:   "youtube-dl",
			Args:   []string{"--id", "https://youtube.com/watch?v=" + a.Video},
			Dir:    t.Dir,
			Stderr: t.Stderr,
		})
	case TubeHelp:
		fmt.Fprintln(t.Stdout, TubeUsage)
	case TubeList:
		_, err := t.Runner.Run(ctx, runner.Cmd{Name: "ls", Args: []string{"-hlF", t.Dir}, Stdout: t.Stdout, Stderr: t.Stderr})
		return err
	case TubeOpen:
		_, err := t.Runner.Run(ctx, runner.Cmd{Name: "open", Args: []string{t.Dir}, Stdout: t.Stdout, Stderr: t.Stderr})
		return err
	case TubeTimestamp:
		fmt.Fprintln(t.Stdout, "[ ** ] "+t.now().UTC().Format(time.DateTime))
	case TubeVersionAction:
		fmt.Fprintln(t.Stdout, "[ ** ] tube "+TubeVersion+" by Fenhl")
	case TubeWatch, TubeWatchInBackground:
		if a.Video == "" {
			fmt.Fprintln(t.Stderr, "[!!!!] No video specified")
			return nil
		}
		args := []string{"--", a.Video + ".mp4"}
		if a.Kind == TubeWatch {
			args = append([]string{"-nW"}, args...)
		}
		return runner.Check(ctx, t.Runner, runner.Cmd{Name: "open", Args: args, Dir: t.Dir, Stdout: t.Stdout, Stderr: t.Stderr})
	}
	return nil
}

func (t Tube) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}
