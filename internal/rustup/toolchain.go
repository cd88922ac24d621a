// SPDX-License-Identifier: MPL-2.0

package rustup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/status"
	"syncbin-cli/pkg/types"
)

const (
	// DefaultTimeout bounds `rustup update` for one toolchain.
	DefaultTimeout = 300 * time.Second
	// queryTimeout bounds the read-only rustup queries.
	queryTimeout = 5 * time.Second
)

// AllToolchains are updated, in this order, by --all-toolchains.
var AllToolchains = []string{"nightly", "beta", "stable"}

var (
	// ErrNoToolchain means rustup has no default toolchain configured.
	ErrNoToolchain = errors.New("no active toolchain")

	overrideLine = regexp.MustCompile(`\t(.*?)-`)

	// terminalPrefixes are reset sequences some rustup versions print before
	// the toolchain name.
	terminalPrefixes = []string{"\x1b(B\x1b[m", "\x1b[m\x0f"}
)

type (
	// Updater drives rustup and cargo.
	Updater struct {
		Runner runner.Runner
		Status *status.Printer
		// Home locates ~/.cargo/bin.
		Home string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// UpdateError reports a failed or timed-out `rustup update`.
	UpdateError struct {
		Toolchain string
		Code      types.ExitCode
		TimedOut  bool
	}
)

func (e *UpdateError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("updating Rust %s: timed out", e.Toolchain)
	}
	return fmt.Sprintf("updating Rust %s: failed", e.Toolchain)
}

// ExitCode is the code the CLI exits with.
func (e *UpdateError) ExitCode() types.ExitCode {
	if e.TimedOut || e.Code.IsSuccess() {
		return types.ExitFailure
	}
	return e.Code
}

// CargoBin returns ~/.cargo/bin.
func (u *Updater) CargoBin() string {
	return filepath.Join(u.Home, ".cargo", "bin")
}

// tool builds a command for a rustup-managed binary. The binary in
// ~/.cargo/bin is preferred since exec resolves names against our own PATH.
func (u *Updater) tool(dir, name string, args ...string) runner.Cmd {
	path := filepath.Join(u.CargoBin(), name)
	if _, err := os.Stat(path); err != nil {
		path = name
	}
	return runner.Cmd{
		Name: path,
		Args: args,
		Dir:  dir,
		Env:  []string{runner.PrependPath(u.CargoBin())},
	}
}

// CheckRustup fails with an actionable error when rustup cannot be found.
func (u *Updater) CheckRustup() error {
	if _, err := os.Stat(filepath.Join(u.CargoBin(), "rustup")); err == nil {
		return nil
	}
	if _, err := u.Runner.LookPath("rustup"); err == nil {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation("find rustup").
		WithResource(u.CargoBin()).
		WithSuggestion("run `syncbin bootstrap rust`").
		WithIssue(issue.ToolchainManagerMissingId).
		BuildError()
}

// CurrentToolchain returns the toolchain in effect for dir: its override if
// there is one, otherwise the default toolchain.
func (u *Updater) CurrentToolchain(ctx context.Context, dir string) (string, error) {
	c := u.tool(dir, "rustup", "override", "list")
	c.Timeout = queryTimeout
	out, err := u.Runner.Output(ctx, c)
	if err != nil {
		return "", fmt.Errorf("rustup override list: %w", err)
	}
	tc, found, err := ParseOverrides(string(out))
	if err != nil {
		return "", err
	}
	if !found {
		return u.DefaultToolchain(ctx)
	}
	return tc, nil
}

// DefaultToolchain returns the channel of rustup's default toolchain, or
// ErrNoToolchain.
func (u *Updater) DefaultToolchain(ctx context.Context) (string, error) {
	c := u.tool("", "rustup", "show")
	c.Timeout = queryTimeout
	out, err := u.Runner.Output(ctx, c)
	if err != nil {
		return "", fmt.Errorf("rustup show: %w", err)
	}
	return ParseDefault(string(out))
}

// ParseOverrides parses `rustup override list`. found is false when no
// override exists.
func ParseOverrides(out string) (toolchain string, found bool, err error) {
	for line := range strings.SplitSeq(out, "\n") {
		if line == "no overrides" {
			return "", false, nil
		}
		if m := overrideLine.FindStringSubmatch(line); m != nil {
			return m[1], true, nil
		}
	}
	return "", false, errors.New("current toolchain could not be determined")
}

// ParseDefault parses `rustup show` and returns the channel of the line marked
// "(default)".
func ParseDefault(out string) (string, error) {
	for line := range strings.SplitSeq(out, "\n") {
		if line == "no active toolchain" {
			return "", ErrNoToolchain
		}
		if !strings.Contains(line, "(default)") {
			continue
		}
		for _, prefix := range terminalPrefixes {
			line = strings.TrimPrefix(line, prefix)
		}
		if channel, _, ok := strings.Cut(line, "-"); ok && channel != "" {
			return channel, nil
		}
	}
	return "", errors.New("failed to parse default toolchain")
}

// UpdateToolchain runs `rustup update <toolchain>` with its output discarded,
// then `rustup self update`. A zero timeout waits indefinitely.
func (u *Updater) UpdateToolchain(ctx context.Context, toolchain string, timeout time.Duration) error {
	c := u.tool("", "rustup", "update", toolchain)
	c.Timeout = timeout
	code, err := u.Runner.Run(ctx, c)
	switch {
	case errors.Is(err, runner.ErrTimeout):
		return &UpdateError{Toolchain: toolchain, TimedOut: true}
	case err != nil:
		return fmt.Errorf("updating Rust %s: %w", toolchain, err)
	case !code.IsSuccess():
		return &UpdateError{Toolchain: toolchain, Code: code}
	}
	return runner.Check(ctx, u.Runner, u.tool("", "rustup", "self", "update"))
}
