// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/tools"
	"syncbin-cli/pkg/types"

	"github.com/spf13/cobra"
)

func newEditCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <command-or-file>",
		Short: "Open a file, or the script behind a command, in $VISUAL or $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			e := tools.Edit{
				Runner: app.Runner,
				Getenv: app.Getenv,
				Home:   config.HomeDir(),
				Cwd:    cwd,
				Stdin:  app.stdin,
				Stdout: app.stdout,
				Stderr: app.stderr,
			}
			code, err := e.Run(cmd.Context(), args[0])
			var notFound *tools.CommandNotFoundError
			if errors.As(err, &notFound) {
				return app.fatal("%s", notFound.Error())
			}
			return toolResult(code, err)
		},
	}
	return addVersionFlag(cmd)
}

func newJinitCommand(app *App) *cobra.Command {
	var array, nonInteractive bool
	cmd := &cobra.Command{
		Use:   "jinit <file>",
		Short: "Create a new JSON file and open it in the editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := tools.InitJSON(path, array); err != nil {
				if errors.Is(err, tools.ErrFileExists) {
					return app.fatal("file exists")
				}
				return err
			}
			if nonInteractive {
				return nil
			}
			return toolResult(app.Runner.Run(cmd.Context(), runner.Cmd{
				Name:   tools.Editor(app.Getenv),
				Args:   []string{path},
				Stdin:  app.stdin,
				Stdout: app.stdout,
				Stderr: app.stderr,
			}))
		},
	}
	cmd.Flags().BoolVarP(&array, "array", "a", false, "initialize with an empty array instead of an object")
	cmd.Flags().BoolVarP(&nonInteractive, "noninteractive", "n", false, "only create the file, don't open it")
	return addVersionFlag(cmd)
}

func newTubeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tube [actions...]",
		Short: "Manage downloaded YouTube videos in ~/Movies/tube",
		Long:  tools.TubeUsage,
		// Actions are order-sensitive and parsed by tube itself.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := tools.ParseTube(args)
			if err != nil {
				return app.fatal("%s", err.Error())
			}
			t := tools.Tube{
				Runner: app.Runner,
				Dir:    tools.TubeDir(config.HomeDir()),
				Stdout: app.stdout,
				Stderr: app.stderr,
				Now:    app.Clock.Now,
			}
			return toolResult(t.Run(cmd.Context(), actions))
		},
	}
}

func newM4A2MP3Command(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "m4a2mp3 [--delete] (<src>.m4a [<dst>.mp3])... | <directory>",
		Short: "Batch-convert .m4a files to .mp3 using ffmpeg",
		Long:  tools.M4A2MP3Usage,
		// Source and destination pairs are positional, so the planner reads
		// the arguments itself.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := tools.PlanConversions(args)
			if err != nil {
				return app.fatal("%s", err.Error())
			}
			if plan.Help {
				fmt.Fprint(app.stdout, tools.M4A2MP3Usage)
				return nil
			}
			return tools.Convert(cmd.Context(), app.Runner, plan, app.stderr)
		},
	}
}

func newSleeptillCommand(app *App) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "sleeptill [<date>] <time>",
		Short: "Sleep until a given time",
		Long: `Sleep until a given time, given as "YYYY-MM-DD HH:MM:SS" or "HH:MM:SS".
A time without a date means today, or tomorrow if it has already passed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			until, err := tools.ParseSleepTarget(args, app.Clock.Now())
			if err != nil {
				return err
			}
			if verbose {
				err = tools.Countdown(cmd.Context(), app.stdout, app.Clock, until)
			} else {
				err = tools.SleepUntil(cmd.Context(), app.Clock, until)
			}
			if err != nil && cmd.Context().Err() != nil {
				return &ExitError{Code: types.ExitInterrupted}
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the time remaining")
	return addVersionFlag(cmd)
}

func newInfoBeamerCommand(app *App) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "info-beamer --list | <node> [args...]",
		Short: "Run an info-beamer node",
		Long: `Run an info-beamer node. Nodes configured in info-beamer.nodes run their
configured command; others run ~/.config/fenhl/info-beamer, or info-beamer-pi
with sudo, on the node directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			ib := tools.InfoBeamer{
				Runner: app.Runner,
				Nodes:  cfg.InfoBeamer.Nodes,
				Home:   config.HomeDir(),
				Cwd:    cwd,
				Stdin:  app.stdin,
				Stdout: app.stdout,
				Stderr: app.stderr,
			}
			if list {
				return ib.List(app.stdout)
			}
			if len(args) == 0 {
				return errors.New("expected a node or --list")
			}
			return toolResult(ib.Run(cmd.Context(), args[0], args[1:]...))
		},
	}
	// Everything after the node name belongs to the node.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&list, "list", false, "list configured nodes")
	return addVersionFlag(cmd)
}

func newUpCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up [n]",
		Short: "Move the terminal cursor up n lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
					return fmt.Errorf("invalid line count %q", args[0])
				}
			}
			return tools.Up(app.stdout, n)
		},
	}
	return addVersionFlag(cmd)
}

func newClearEOLCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-eol",
		Short: "Clear from the cursor to the end of the line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tools.ClearEOL(app.stdout)
		},
	}
	return addVersionFlag(cmd)
}

func newBunCommand(app *App) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "bun [<string>...]",
		Short: "Print quoted reprs of strings or typed characters",
		Long: `Print the quoted repr of each argument. Without arguments, read characters
from the terminal in raw mode and print the repr of each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				for _, s := range args {
					fmt.Fprintln(app.stdout, tools.Repr(s))
				}
				return nil
			}
			if f, ok := app.stdin.(*os.File); ok {
				err := tools.ReadRaw(f, app.stdout, n)
				if !errors.Is(err, tools.ErrNotTerminal) {
					return err
				}
			}
			return tools.ReadChars(app.stdin, app.stdout, n)
		},
	}
	cmd.Flags().IntVarP(&n, "number-of-characters", "n", 1, "how many characters to read when no string is given")
	return addVersionFlag(cmd)
}
