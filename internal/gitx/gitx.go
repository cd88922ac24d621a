// SPDX-License-Identifier: MPL-2.0

// Package gitx implements the git-squash and git-reset-to-remote helpers.
package gitx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"
)

// DefaultRemote is the remote git-reset-to-remote resets to.
const DefaultRemote = "origin"

// ErrTooFewCommits is returned when squashing fewer than two commits.
var ErrTooFewCommits = errors.New("must squash at least 2 commits")

// Git runs git in Dir.
type Git struct {
	Runner runner.Runner
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Squash folds the last n commits into one. An empty message reuses the
// subject of the oldest squashed commit. The returned code is git commit's.
func (g Git) Squash(ctx context.Context, n int, message string) (types.ExitCode, error) {
	if n < 2 {
		return types.ExitFailure, ErrTooFewCommits
	}
	if message == "" {
		out, err := g.output(ctx, "log", "-1", "--pretty=format:%s", "HEAD~"+strconv.Itoa(n-1))
		if err != nil {
			return types.ExitFailure, fmt.Errorf("reading commit message: %w", err)
		}
		message = out
	}
	if err := runner.Check(ctx, g.Runner, g.cmd("reset", "--soft", "HEAD~"+strconv.Itoa(n))); err != nil {
		return types.ExitFailure, err
	}
	return g.Runner.Run(ctx, g.cmd("commit", "-m", message))
}

// ResetToRemote fetches remote and hard-resets to remote/branch. An empty
// branch means the current one.
func (g Git) ResetToRemote(ctx context.Context, remote, branch string) (types.ExitCode, error) {
	if remote == "" {
		remote = DefaultRemote
	}
	if branch == "" {
		out, err := g.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return types.ExitFailure, fmt.Errorf("determining current branch: %w", err)
		}
		branch = strings.TrimSuffix(out, "\n")
	}
	if err := runner.Check(ctx, g.Runner, g.cmd("fetch", remote)); err != nil {
		return types.ExitFailure, err
	}
	return g.Runner.Run(ctx, g.cmd("reset", "--hard", remote+"/"+branch))
}

func (g Git) cmd(args ...string) runner.Cmd {
	return runner.Cmd{Name: "git", Args: args, Dir: g.Dir, Stdout: g.Stdout, Stderr: g.Stderr}
}

func (g Git) output(ctx context.Context, args ...string) (string, error) {
	c := g.cmd(args...)
	c.Stdout = nil
	out, err := g.Runner.Output(ctx, c)
	return string(out), err
}
