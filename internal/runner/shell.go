// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"syncbin-cli/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Shell runs script through the embedded interpreter. External programs in the
// script are executed with the interpreter's default exec handler.
func (n *Native) Shell(ctx context.Context, script string, c Cmd) (types.ExitCode, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "script")
	if err != nil {
		return types.ExitFailure, fmt.Errorf("failed to parse script: %w", err)
	}

	dir := c.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return types.ExitFailure, fmt.Errorf("failed to determine working directory: %w", err)
		}
	}

	r, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(append(os.Environ(), c.Env...)...)),
		interp.StdIO(c.Stdin, c.Stdout, c.Stderr),
	)
	if err != nil {
		return types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err)
	}

	runCtx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	slog.Debug("running shell script", "script", script, "dir", dir)

	err = r.Run(runCtx, prog)
	if timedOut(ctx, runCtx, c.Timeout) {
		return types.ExitFailure, fmt.Errorf("shell script: %w after %s", ErrTimeout, c.Timeout)
	}
	if err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return types.ExitCode(status), nil
		}
		return types.ExitFailure, fmt.Errorf("script execution failed: %w", err)
	}
	return types.ExitSuccess, nil
}

// QuoteArgs renders args as a single Bash-safe command line, the way shlex.join
// would.
func QuoteArgs(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
