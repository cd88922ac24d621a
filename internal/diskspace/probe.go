// SPDX-License-Identifier: MPL-2.0

package diskspace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"syncbin-cli/internal/runner"
)

type (
	// Prober measures a filesystem.
	Prober interface {
		Usage(ctx context.Context, path string) (Usage, error)
	}

	// ProberFunc adapts a function to Prober.
	ProberFunc func(ctx context.Context, path string) (Usage, error)

	// DFProber asks `df -kl` for usage.
	DFProber struct {
		Runner runner.Runner
	}
)

var errDFOutput = errors.New("unexpected df output")

func (f ProberFunc) Usage(ctx context.Context, path string) (Usage, error) {
	return f(ctx, path)
}

// Usage runs `df -kl <path>` and reads the size and available columns of the
// last line (df wraps long device names onto their own line).
func (p DFProber) Usage(ctx context.Context, path string) (Usage, error) {
	out, err := p.Runner.Output(ctx, runner.Cmd{Name: "df", Args: []string{"-kl", path}})
	if err != nil {
		return Usage{}, fmt.Errorf("df %s: %w", path, err)
	}
	return parseDF(string(out))
}

func parseDF(out string) (Usage, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return Usage{}, fmt.Errorf("%w: %q", errDFOutput, out)
	}
	fields := strings.Fields(strings.Join(lines[1:], " "))
	if len(fields) < 4 {
		return Usage{}, fmt.Errorf("%w: %q", errDFOutput, out)
	}
	total, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Usage{}, fmt.Errorf("%w: size %q", errDFOutput, fields[1])
	}
	available, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Usage{}, fmt.Errorf("%w: available %q", errDFOutput, fields[3])
	}
	return Usage{Total: total * KiB, Available: available * KiB}, nil
}
