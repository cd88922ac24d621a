// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"

	"github.com/jedib0t/go-pretty/v6/table"
)

// InfoBeamer runs info-beamer nodes, either through a configured command
// line or through the local info-beamer binary.
type InfoBeamer struct {
	Runner runner.Runner
	// Nodes maps node names to their configured invocation.
	Nodes  map[string][]string
	Home   string
	Cwd    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Invocation returns the command that runs a node directory:
// ~/.config/fenhl/info-beamer when it exists, else the info-beamer-pi build
// under sudo.
func (ib InfoBeamer) Invocation() []string {
	custom := filepath.Join(ib.Home, ".config", "fenhl", "info-beamer")
	if _, err := os.Stat(custom); err == nil {
		return []string{custom}
	}
	return []string{"sudo", "-E", filepath.Join(ib.Home, "info-beamer-pi", "info-beamer")}
}

// Command returns the full command line for node. Configured nodes match
// case-insensitively; anything else is treated as a node directory.
func (ib InfoBeamer) Command(node string, args ...string) []string {
	if inv, ok := ib.lookup(node); ok {
		return append(slices.Clone(inv), args...)
	}
	cmd := append(ib.Invocation(), ib.nodePath(node))
	return append(cmd, args...)
}

// Run runs node with args and returns its exit code.
func (ib InfoBeamer) Run(ctx context.Context, node string, args ...string) (types.ExitCode, error) {
	argv := ib.Command(node, args...)
	return ib.Runner.Run(ctx, runner.Cmd{
		Name:   argv[0],
		Args:   argv[1:],
		Stdin:  ib.Stdin,
		Stdout: ib.Stdout,
		Stderr: ib.Stderr,
	})
}

// List writes the configured nodes as a table, sorted by name, with each
// invocation quoted for the shell.
func (ib InfoBeamer) List(w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Node", "Command"})
	for _, name := range slices.Sorted(maps.Keys(ib.Nodes)) {
		quoted, err := runner.QuoteArgs(ib.Nodes[name])
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, quoted})
	}
	t.Render()
	return nil
}

func (ib InfoBeamer) lookup(node string) ([]string, bool) {
	if inv, ok := ib.Nodes[node]; ok {
		return inv, true
	}
	for name, inv := range ib.Nodes {
		if strings.EqualFold(name, node) {
			return inv, true
		}
	}
	return nil, false
}

func (ib InfoBeamer) nodePath(node string) string {
	if node == "~" || strings.HasPrefix(node, "~/") {
		node = filepath.Join(ib.Home, strings.TrimPrefix(node, "~"))
	}
	if !filepath.IsAbs(node) {
		node = filepath.Join(ib.Cwd, node)
	}
	if resolved, err := filepath.EvalSymlinks(node); err == nil {
		return resolved
	}
	return filepath.Clean(node)
}
