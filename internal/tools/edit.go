// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"
)

// DefaultEditor is used when neither $VISUAL nor $EDITOR is set.
const DefaultEditor = "nano"

// CommandNotFoundError is returned by Resolve for a bare name that is not on
// PATH.
type CommandNotFoundError struct {
	Name string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("edit: command '%s' not found", e.Name)
}

// Editor picks $VISUAL, then $EDITOR, then nano.
func Editor(getenv func(string) string) string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return DefaultEditor
}

// Resolve turns the argument of edit into a file path: "~" paths are expanded
// against home, paths containing "/" are made absolute against cwd, and bare
// names are looked up like commands.
func Resolve(arg, home, cwd string, lookPath func(string) (string, error)) (string, error) {
	switch {
	case arg == "~" || strings.HasPrefix(arg, "~/"):
		return filepath.Join(home, strings.TrimPrefix(arg, "~")), nil
	case strings.Contains(arg, "/"):
		if filepath.IsAbs(arg) {
			return filepath.Clean(arg), nil
		}
		return filepath.Join(cwd, arg), nil
	}
	path, err := lookPath(arg)
	if err != nil {
		return "", &CommandNotFoundError{Name: arg}
	}
	return path, nil
}

// Edit opens files, or the scripts behind commands, in the user's editor.
type Edit struct {
	Runner runner.Runner
	Getenv func(string) string
	Home   string
	Cwd    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run opens arg and returns the editor's exit code.
func (e Edit) Run(ctx context.Context, arg string) (types.ExitCode, error) {
	path, err := Resolve(arg, e.Home, e.Cwd, e.Runner.LookPath)
	if err != nil {
		return types.ExitFailure, err
	}
	return e.Runner.Run(ctx, runner.Cmd{
		Name:   Editor(e.Getenv),
		Args:   []string{path},
		Stdin:  e.Stdin,
		Stdout: e.Stdout,
		Stderr: e.Stderr,
	})
}
