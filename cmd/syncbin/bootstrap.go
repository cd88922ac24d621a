// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"syncbin-cli/internal/bootstrap"
	"syncbin-cli/internal/config"
	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newBootstrapCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap <setup>...",
		Short: "Run setups and their prerequisites",
		Long: `Run the named setups. Prerequisites that are not installed yet run first;
setups named on the command line always run. Nothing runs if any name is
unknown. See 'syncbin status' for the available setups.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			p := app.printer(false)
			env := bootstrap.NewEnv(app.Runner, cfg, p, app.stdin, app.stdout, app.stderr)

			err = app.Registry.Bootstrap(cmd.Context(), env, args...)
			var unknown *bootstrap.UnknownSetupError
			if errors.As(err, &unknown) {
				p := app.stderrPrinter()
				for _, name := range unknown.Names {
					p.Fatal("Unknown setup for `syncbin bootstrap`: %s", name)
				}
				p.Info("Available setups: %s", strings.Join(unknown.Available, ", "))
				if app.verbose {
					app.renderIssue(issue.UnknownSetupId)
				}
				return &ExitError{Code: types.ExitFailure}
			}
			if err != nil {
				return &ExitError{Code: exitCodeOf(err), Err: err}
			}
			return nil
		},
	}
}

func newDescribeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <setup>",
		Short: "Show what a setup does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := app.Registry.Get(args[0])
			if !ok {
				return &bootstrap.UnknownSetupError{Names: args, Available: app.Registry.Names()}
			}
			md := fmt.Sprintf("# %s\n\n%s\n\n%s\n", s.Name, s.Summary, s.Doc)
			if len(s.Requires) > 0 {
				md += "\nRequires: " + strings.Join(s.Requires, ", ") + "\n"
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which setups are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			env := bootstrap.NewEnv(app.Runner, cfg, app.printer(true), app.stdin, app.stdout, app.stderr)

			t := table.NewWriter()
			t.SetOutputMirror(app.stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Setup", "Installed", "Requires", "Summary"})
			for _, row := range app.Registry.Status(cmd.Context(), env) {
				installed := row.Installed.String()
				if row.Err != nil {
					installed += " (" + row.Err.Error() + ")"
				}
				t.AppendRow(table.Row{row.Name, installed, strings.Join(row.Requires, ", "), row.Summary})
			}
			t.Render()
			return nil
		},
	}
}

func newHasinetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hasinet",
		Short: "Check for internet connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAttached(cmd, "syncbin-hasinet")
		},
	}
}

func newInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Run the syncbin install script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			script := filepath.Join(config.SyncbinRepoDir(), "config", "install.sh")
			return app.runAttached(cmd, "sh", script)
		},
	}
}

func newStartupCommand(app *App) *cobra.Command {
	var ignoreLock, noInternetTest bool
	cmd := &cobra.Command{
		Use:   "startup",
		Short: "Run the login-time update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := []string{"syncbin-startup"}
			if ignoreLock {
				argv = append(argv, "--ignore-lock")
			}
			if noInternetTest {
				argv = append(argv, "--no-internet-test")
			}
			return app.runAttached(cmd, argv...)
		},
	}
	cmd.Flags().BoolVar(&ignoreLock, "ignore-lock", false, "run even if another startup holds the lock")
	cmd.Flags().BoolVar(&noInternetTest, "no-internet-test", false, "skip the connectivity check")
	return cmd
}

func newUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update [public|private|hooks] [<old> <new>]",
		Short: "Update the syncbin checkouts",
		Args:  validateUpdateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{"syncbin-update"}, args...)
			if _, err := app.Runner.LookPath("zsh"); err != nil {
				argv = append([]string{"bash"}, argv...)
			}
			return app.runAttached(cmd, argv...)
		},
	}
}

// validateUpdateArgs accepts [mode] [<old> <new>].
func validateUpdateArgs(_ *cobra.Command, args []string) error {
	hasMode := len(args) > 0 && isUpdateMode(args[0])
	revs := len(args)
	if hasMode {
		revs--
	}
	switch {
	case len(args) == 1 && !hasMode:
		return fmt.Errorf("unknown update mode %q", args[0])
	case revs != 0 && revs != 2:
		return fmt.Errorf("expected [public|private|hooks] [<old> <new>], got %d arguments", len(args))
	}
	return nil
}

func isUpdateMode(s string) bool {
	switch s {
	case "public", "private", "hooks":
		return true
	}
	return false
}

// runAttached runs argv on the terminal and exits with its status.
func (app *App) runAttached(cmd *cobra.Command, argv ...string) error {
	code, err := app.Runner.Run(cmd.Context(), runner.Cmd{
		Name:   argv[0],
		Args:   argv[1:],
		Stdin:  app.stdin,
		Stdout: app.stdout,
		Stderr: app.stderr,
	})
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	return exitWith(code)
}

// renderIssue prints the remediation help for id to stderr.
func (app *App) renderIssue(id issue.Id) {
	if it := issue.Get(id); it != nil {
		if out, err := it.Render("dark"); err == nil {
			fmt.Fprint(app.stderr, out)
		}
	}
}

// exitCodeOf prefers the exit status of a failed subprocess.
func exitCodeOf(err error) types.ExitCode {
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitCodeOf(err)
}
