// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/lock"
	"syncbin-cli/internal/rustup"
	"syncbin-cli/pkg/types"

	"github.com/spf13/cobra"
)

type rustFlags struct {
	release       bool
	crates        bool
	quiet         bool
	run           bool
	allProjects   bool
	allToolchains bool
	noProject     bool
	noTimeout     bool
	timeout       int
	ignoreLock    bool
	skipIfLocked  bool
}

func newRustCommand(app *App) *cobra.Command {
	var f rustFlags
	cmd := &cobra.Command{
		Use:     "rust [directory]",
		Aliases: []string{"rs"},
		Short:   "Update the Rust toolchain and build the current project",
		Long: `Update the Rust toolchain in effect for the project, then pull, update,
build and test the project. Only one update runs at a time; others wait for
the lock at $TMPDIR/syncbin-rs.lock.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir = args[0]
			}
			return app.runRust(cmd, f, dir)
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.release, "release", "R", false, "build with --release and skip tests")
	fl.BoolVarP(&f.crates, "crates", "c", false, "run cargo update even if Cargo.lock is tracked")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "pass --quiet to cargo and hide progress")
	fl.BoolVarP(&f.run, "run", "r", false, "cargo run after a successful build")
	fl.BoolVar(&f.allProjects, "all-projects", false, "update every project in rust.projects")
	fl.BoolVar(&f.allToolchains, "all-toolchains", false, "update nightly, beta and stable")
	fl.BoolVar(&f.noProject, "no-project", false, "only update the toolchain")
	fl.BoolVar(&f.noTimeout, "no-timeout", false, "never time out rustup update")
	fl.IntVar(&f.timeout, "timeout", int(rustup.DefaultTimeout/time.Second), "rustup update timeout in seconds")
	fl.BoolVar(&f.ignoreLock, "ignore-lock", false, "release a held lock and run unlocked")
	fl.BoolVar(&f.skipIfLocked, "skip-if-locked", false, "exit successfully if another update is running")
	cmd.MarkFlagsMutuallyExclusive("ignore-lock", "skip-if-locked")
	cmd.MarkFlagsMutuallyExclusive("all-projects", "no-project")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "current [directory]",
			Short: "Print the toolchain in effect for a directory",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := ""
				if len(args) == 1 {
					dir = args[0]
				}
				tc, err := app.updater(false).CurrentToolchain(cmd.Context(), dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, tc)
				return nil
			},
		},
		&cobra.Command{
			Use:   "default",
			Short: "Print rustup's default toolchain",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tc, err := app.updater(false).DefaultToolchain(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, tc)
				return nil
			},
		},
	)
	return addVersionFlag(cmd)
}

func (app *App) updater(quiet bool) *rustup.Updater {
	return &rustup.Updater{
		Runner: app.Runner,
		Status: app.printer(quiet),
		Home:   config.HomeDir(),
		Stdin:  app.stdin,
		Stdout: app.stdout,
		Stderr: app.stderr,
	}
}

func (app *App) runRust(cmd *cobra.Command, f rustFlags, dir string) error {
	ctx := cmd.Context()
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	u := app.updater(f.quiet)

	path := lock.DefaultPathWith(app.Getenv)
	var held *lock.Lock
	if f.ignoreLock {
		u.Status.Warn("releasing rustup lock")
		if err := lock.ForceRelease(path); err != nil {
			return err
		}
	} else {
		u.Status.Progress(0, "acquiring lock", false)
		held, err = lock.Acquire(ctx, path, lock.Options{
			SkipIfLocked: f.skipIfLocked,
			OnWait: func(holder int) {
				u.Status.Progress(0, fmt.Sprintf("waiting for lock held by pid %d", holder), true)
				if app.verbose {
					app.renderIssue(issue.LockHeldId)
				}
			},
		})
		if errors.Is(err, lock.ErrLocked) {
			return nil
		}
		if err != nil {
			return &ExitError{Code: types.ExitCodeOf(err), Err: err}
		}
		defer held.Release()
	}

	timeout := time.Duration(f.timeout) * time.Second
	if f.noTimeout {
		timeout = 0
	}
	code, err := u.Update(ctx, rustup.Options{
		Release:       f.release,
		Crates:        f.crates,
		Quiet:         f.quiet,
		Run:           f.run,
		AllToolchains: f.allToolchains,
		AllProjects:   f.allProjects,
		NoProject:     f.noProject,
		Timeout:       timeout,
		Projects:      cfg.Rust.Projects,
		Dir:           dir,
		BeforeRun:     held.Release,
	})

	var updateErr *rustup.UpdateError
	switch {
	case errors.As(err, &updateErr):
		u.Status.Fatal("%s", updateErr.Error())
		return &ExitError{Code: updateErr.ExitCode()}
	case err != nil:
		if errors.Is(err, rustup.ErrNoToolchain) && app.verbose {
			app.renderIssue(issue.ToolchainManagerMissingId)
		}
		return &ExitError{Code: code, Err: err}
	}
	return exitWith(code)
}
