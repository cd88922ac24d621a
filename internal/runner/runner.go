// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"syncbin-cli/pkg/types"
)

// waitDelay bounds how long a terminated child may linger before it is killed.
const waitDelay = 5 * time.Second

// ErrTimeout is returned (wrapped) when a command exceeds Cmd.Timeout.
var ErrTimeout = errors.New("command timed out")

type (
	// Cmd describes one external program invocation.
	Cmd struct {
		// Name is the program to execute, looked up on PATH.
		Name string
		// Args are the program arguments (without Name).
		Args []string
		// Dir is the working directory; empty means the current directory.
		Dir string
		// Env holds KEY=VALUE entries appended to the inherited environment.
		// Later entries win, so a PATH entry here replaces the inherited PATH.
		Env []string
		// Stdin, Stdout and Stderr default to the null device when nil for Run.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Timeout terminates the process after this duration. Zero disables it.
		Timeout time.Duration
	}

	// Runner executes commands.
	Runner interface {
		// Run executes the command and returns its exit code. A non-zero exit is
		// not an error; errors report failures to start or wait, and timeouts
		// (wrapping ErrTimeout).
		Run(ctx context.Context, c Cmd) (types.ExitCode, error)
		// Output executes the command and returns its stdout. A non-zero exit is
		// reported as *ExitError.
		Output(ctx context.Context, c Cmd) ([]byte, error)
		// Shell runs a POSIX shell script with the I/O, directory and
		// environment of c (Name and Args are ignored).
		Shell(ctx context.Context, script string, c Cmd) (types.ExitCode, error)
		// LookPath resolves an executable name like `which`.
		LookPath(name string) (string, error)
	}

	// ExitError reports a command that exited with a non-zero status.
	ExitError struct {
		Name   string
		Code   types.ExitCode
		Stderr []byte
	}

	// Native runs commands on the host with os/exec.
	Native struct{}
)

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Name, e.Code)
	if stderr := strings.TrimSpace(string(e.Stderr)); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// New returns the host runner.
func New() *Native {
	return &Native{}
}

// Run executes c, streaming its I/O.
func (n *Native) Run(ctx context.Context, c Cmd) (types.ExitCode, error) {
	runCtx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := n.command(runCtx, c)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	slog.Debug("running command", "name", c.Name, "args", c.Args, "dir", c.Dir)

	err := cmd.Run()
	if timedOut(ctx, runCtx, c.Timeout) {
		return types.ExitCodeOf(err), fmt.Errorf("%s: %w after %s", c.Name, ErrTimeout, c.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return types.ExitCodeOf(err), nil
		}
		return types.ExitFailure, fmt.Errorf("failed to execute %s: %w", c.Name, err)
	}
	return types.ExitSuccess, nil
}

// Output executes c and returns what it wrote to stdout.
func (n *Native) Output(ctx context.Context, c Cmd) ([]byte, error) {
	runCtx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := n.command(runCtx, c)
	cmd.Stdin = c.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	} else {
		cmd.Stderr = &stderr
	}

	slog.Debug("capturing command output", "name", c.Name, "args", c.Args, "dir", c.Dir)

	err := cmd.Run()
	if timedOut(ctx, runCtx, c.Timeout) {
		return stdout.Bytes(), fmt.Errorf("%s: %w after %s", c.Name, ErrTimeout, c.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{Name: c.Name, Code: types.ExitCodeOf(err), Stderr: stderr.Bytes()}
		}
		return stdout.Bytes(), fmt.Errorf("failed to execute %s: %w", c.Name, err)
	}
	return stdout.Bytes(), nil
}

// LookPath resolves name on PATH.
func (n *Native) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (n *Native) command(ctx context.Context, c Cmd) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	// Ask politely first, like Popen.terminate(); WaitDelay escalates to a kill.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = waitDelay
	return cmd
}

// Check runs c and converts a non-zero exit into an *ExitError.
func Check(ctx context.Context, r Runner, c Cmd) error {
	code, err := r.Run(ctx, c)
	if err != nil {
		return err
	}
	if !code.IsSuccess() {
		return &ExitError{Name: c.Name, Code: code}
	}
	return nil
}

// Succeeds reports whether c exits with status 0, discarding its output.
// Failures to start count as failure.
func Succeeds(ctx context.Context, r Runner, c Cmd) bool {
	code, err := r.Run(ctx, c)
	return err == nil && code.IsSuccess()
}

// PrependPath returns a PATH=... entry with dir placed before the current PATH.
func PrependPath(dir string) string {
	current := os.Getenv("PATH")
	if current == "" {
		return "PATH=" + dir
	}
	return "PATH=" + dir + string(os.PathListSeparator) + current
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// timedOut distinguishes our own deadline from cancellation of the parent.
func timedOut(parent, runCtx context.Context, timeout time.Duration) bool {
	return timeout > 0 && parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
}
