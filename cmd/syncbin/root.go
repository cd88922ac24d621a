// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for syncbin.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/version"
	"syncbin-cli/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// multiCall maps the basename syncbin is invoked as to the subcommand it
// stands for, so symlinks named after the old scripts keep working.
var multiCall = map[string][]string{
	"bitbar-battery":      {"bitbar", "battery"},
	"bitbar-discord":      {"bitbar", "discord"},
	"bitbar-diskspace":    {"bitbar", "diskspace"},
	"bitbar-twitch":       {"bitbar", "twitch"},
	"bitbar-volume":       {"bitbar", "volume"},
	"bun":                 {"bun"},
	"caesar":              {"caesar"},
	"clear-eol":           {"clear-eol"},
	"diskspace":           {"diskspace"},
	"edit":                {"edit"},
	"git-reset-to-remote": {"git-reset-to-remote"},
	"git-squash":          {"git-squash"},
	"info-beamer":         {"info-beamer"},
	"jinit":               {"jinit"},
	"m4a2mp3":             {"m4a2mp3"},
	"playlist":            {"playlist"},
	"rs":                  {"rust"},
	"rust":                {"rust"},
	"sleeptill":           {"sleeptill"},
	"tube":                {"tube"},
	"up":                  {"up"},
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "syncbin",
		Short: "Personal workstation tooling",
		Long: TitleStyle.Render("syncbin") + SubtitleStyle.Render(" - personal workstation tooling") + `

syncbin bootstraps machines, keeps Rust toolchains and projects up to date,
and bundles the small tools and bitbar plugins of fenhl/syncbin into one
binary. Symlink it as diskspace, caesar, rust, tube, ... to run a tool
directly.

` + SubtitleStyle.Render("Examples:") + `
  syncbin bootstrap rust       Install rustup and its prerequisites
  syncbin status               Show which setups are installed
  syncbin rust --all-projects  Update the toolchain and every configured project
  syncbin diskspace --zsh      Print free space only when it is low`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.configureLogging()
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging and error details")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/fenhl/syncbin.json)")

	root.AddCommand(
		newBootstrapCommand(app),
		newDescribeCommand(app),
		newStatusCommand(app),
		newHasinetCommand(app),
		newInstallCommand(app),
		newStartupCommand(app),
		newUpdateCommand(app),
		newConfigCommand(app),
		newRustCommand(app),
		newDiskspaceCommand(app),
		newCaesarCommand(app),
		newPlaylistCommand(app),
		newBitbarCommand(app),
		newGitSquashCommand(app),
		newGitResetToRemoteCommand(app),
		newEditCommand(app),
		newJinitCommand(app),
		newTubeCommand(app),
		newM4A2MP3Command(app),
		newSleeptillCommand(app),
		newInfoBeamerCommand(app),
		newUpCommand(app),
		newClearEOLCommand(app),
		newBunCommand(app),
	)
	return root
}

// Execute runs syncbin with the process arguments and exits with its status.
// This is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs syncbin with the process arguments and returns the exit status.
func Main() int {
	return int(run(context.Background(), NewApp(Dependencies{}), os.Args))
}

// run executes one invocation. argv[0] selects the tool for multi-call use.
func run(ctx context.Context, app *App, argv []string) types.ExitCode {
	root := newRootCommand(app)
	root.SetArgs(dispatchArgs(argv))
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(version.Get()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	)
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// dispatchArgs returns the cobra arguments for argv, prefixed with the
// subcommand named by argv[0] when syncbin runs under a tool's name.
func dispatchArgs(argv []string) []string {
	if len(argv) == 0 {
		return nil
	}
	name := strings.TrimSuffix(filepath.Base(argv[0]), ".exe")
	if prefix, ok := multiCall[name]; ok {
		return append(slices.Clone(prefix), argv[1:]...)
	}
	return argv[1:]
}

// renderError prints errors returned from RunE in the bracketed style.
// Exits that were already reported print nothing.
func (app *App) renderError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("[!!!!]")+" "+formatErrorForDisplay(err, app.verbose))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// addVersionFlag gives a tool its own --version, printing
// "<tool> from fenhl/syncbin <version>" the way the standalone scripts did.
func addVersionFlag(cmd *cobra.Command) *cobra.Command {
	var show bool
	cmd.Flags().BoolVar(&show, "version", false, "print version and exit")
	runE := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if show {
			fmt.Fprintln(c.OutOrStdout(), version.String(c.Name()))
			return nil
		}
		return runE(c, args)
	}
	return cmd
}
