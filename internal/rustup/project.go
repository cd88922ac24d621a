// SPDX-License-Identifier: MPL-2.0

package rustup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/status"
	"syncbin-cli/pkg/types"
)

// statusWidth pads progress messages so a shorter one fully overwrites the
// previous carriage-return line.
const statusWidth = 21

// Options control Update and UpdateProject.
type Options struct {
	// Release builds with --release and skips tests.
	Release bool
	// Crates runs `cargo update` even when Cargo.lock is tracked.
	Crates bool
	// Quiet passes --quiet to cargo.
	Quiet bool
	// Run adds a `cargo run` step after a successful build and test.
	Run bool

	AllToolchains bool
	AllProjects   bool
	NoProject     bool
	// Timeout bounds each `rustup update`; zero disables it.
	Timeout time.Duration
	// Projects are the directories for AllProjects.
	Projects []string
	// Dir is the project directory when AllProjects is unset.
	Dir string

	// BeforeRun is called right before `cargo run`, e.g. to release a lock.
	BeforeRun func()
}

func (u *Updater) progress(n int, msg string) {
	u.Status.Progress(n, fmt.Sprintf("%-*s", statusWidth, msg), false)
}

// attached returns a cargo command streaming to the terminal.
func (u *Updater) attached(dir, name string, args ...string) runner.Cmd {
	c := u.tool(dir, name, args...)
	c.Stdin = u.Stdin
	c.Stdout = u.Stdout
	c.Stderr = u.Stderr
	return c
}

func cargoFlags(opts Options, release bool) []string {
	var flags []string
	if release && opts.Release {
		flags = append(flags, "--release")
	}
	if opts.Quiet {
		flags = append(flags, "--quiet")
	}
	return flags
}

// UpdateProject pulls the git repo in dir, refreshes crates, then builds,
// tests and optionally runs the cargo project. The exit code is that of the
// last step that ran.
func (u *Updater) UpdateProject(ctx context.Context, dir string, opts Options) (types.ExitCode, error) {
	if err := u.updateRepo(ctx, dir); err != nil {
		return types.ExitFailure, err
	}

	if code := u.updateCrates(ctx, dir, opts); !code.IsSuccess() {
		return code, nil
	}
	u.Status.Progress(status.Done, "update complete", true)

	manifest, err := ReadManifest(dir)
	if err != nil {
		if !IsCargoProject(dir) {
			slog.Debug("no Cargo.toml, skipping build", "dir", dir)
			return types.ExitSuccess, nil
		}
		return types.ExitFailure, err
	}
	u.Status.Info("building %s", manifest.DisplayName(dir))

	code, err := u.Runner.Run(ctx, u.attached(dir, "cargo", append([]string{"build"}, cargoFlags(opts, true)...)...))
	if err != nil || !code.IsSuccess() {
		return code, err
	}

	if !opts.Release {
		code, err = u.Runner.Run(ctx, u.attached(dir, "cargo", append([]string{"test"}, cargoFlags(opts, false)...)...))
		if err != nil || !code.IsSuccess() {
			return code, err
		}
	}

	if !opts.Run {
		return code, nil
	}
	if opts.BeforeRun != nil {
		opts.BeforeRun()
	}
	code, err = u.Runner.Run(ctx, u.attached(dir, "cargo", append([]string{"run"}, cargoFlags(opts, true)...)...))
	if ctx.Err() != nil {
		fmt.Fprintln(u.Stdout)
		return types.ExitInterrupted, nil
	}
	return code, err
}

func (u *Updater) updateRepo(ctx context.Context, dir string) error {
	if !runner.Succeeds(ctx, u.Runner, runner.Cmd{Name: "git", Args: []string{"branch"}, Dir: dir}) {
		u.Status.Info("not a git repo, skipping repo update step")
		return nil
	}
	u.progress(3, "updating repo")
	if err := runner.Check(ctx, u.Runner, runner.Cmd{Name: "git", Args: []string{"fetch", "--quiet"}, Dir: dir, Stderr: u.Stderr}); err != nil {
		return err
	}
	mergeErr := runner.Check(ctx, u.Runner, runner.Cmd{Name: "git", Args: []string{"merge", "--quiet", "FETCH_HEAD"}, Dir: dir, Stderr: u.Stderr})
	if mergeErr == nil {
		return nil
	}
	if err := runner.Check(ctx, u.Runner, runner.Cmd{Name: "git", Args: []string{"merge", "--abort"}, Dir: dir, Stderr: u.Stderr}); err != nil {
		return fmt.Errorf("%w (merge --abort: %w)", mergeErr, err)
	}
	return mergeErr
}

func (u *Updater) updateCrates(ctx context.Context, dir string, opts Options) types.ExitCode {
	// `cargo update` complains if no Cargo.lock exists yet.
	if _, err := os.Stat(filepath.Join(dir, "Cargo.lock")); err != nil {
		return types.ExitSuccess
	}
	if !opts.Crates && !runner.Succeeds(ctx, u.Runner, runner.Cmd{Name: "git", Args: []string{"check-ignore", "Cargo.lock"}, Dir: dir}) {
		u.Status.Info("Cargo.lock tracked by git, skipping crates update step, `--crates` to override")
		return types.ExitSuccess
	}
	u.progress(4, "updating crates")
	code, err := u.Runner.Run(ctx, u.attached(dir, "cargo", "update", "--quiet"))
	if err != nil || !code.IsSuccess() {
		u.Status.Fatal("updating crates: failed")
		if code.IsSuccess() {
			code = types.ExitFailure
		}
		return code
	}
	return types.ExitSuccess
}

// Update updates the toolchain(s), then the project(s) selected by opts.
func (u *Updater) Update(ctx context.Context, opts Options) (types.ExitCode, error) {
	if err := u.CheckRustup(); err != nil {
		return types.ExitFailure, err
	}

	if opts.AllToolchains {
		for i, tc := range AllToolchains {
			u.progress(i, "updating Rust "+tc)
			if err := u.UpdateToolchain(ctx, tc, opts.Timeout); err != nil {
				return types.ExitFailure, err
			}
		}
	} else {
		tc, err := u.CurrentToolchain(ctx, opts.Dir)
		if err != nil {
			return types.ExitFailure, err
		}
		u.progress(0, "updating Rust "+tc)
		if err := u.UpdateToolchain(ctx, tc, opts.Timeout); err != nil {
			return types.ExitFailure, err
		}
	}

	switch {
	case opts.NoProject:
		u.progress(status.Done, "update complete")
		return types.ExitSuccess, nil
	case opts.AllProjects:
		for _, dir := range opts.Projects {
			code, err := u.UpdateProject(ctx, dir, opts)
			if err != nil {
				return code, fmt.Errorf("%s: %w", dir, err)
			}
			if !code.IsSuccess() {
				return code, nil
			}
		}
		return types.ExitSuccess, nil
	default:
		return u.UpdateProject(ctx, opts.Dir, opts)
	}
}
