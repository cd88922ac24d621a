// SPDX-License-Identifier: MPL-2.0

// Package fakerunner provides a recording runner.Runner for tests. Responses
// are matched against the command line ("name arg1 arg2") by exact match
// first, then by the longest registered prefix. Unmatched commands succeed
// silently.
package fakerunner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"syncbin-cli/internal/runner"
	"syncbin-cli/pkg/types"
)

type (
	// Call records one invocation.
	Call struct {
		Name   string
		Args   []string
		Dir    string
		Env    []string
		Script string
	}

	// Response is what a matched command produces.
	Response struct {
		Code   types.ExitCode
		Stdout string
		Stderr string
		// Err is returned as a start failure.
		Err error
		// Do runs before the response is delivered, e.g. to create files the
		// real command would have created.
		Do func(Call)
	}

	// Runner is a scripted, recording runner.Runner.
	Runner struct {
		mu       sync.Mutex
		calls    []Call
		exact    map[string][]Response
		prefixes map[string][]Response
		paths    map[string]string
	}
)

var _ runner.Runner = (*Runner)(nil)

// Line renders the call as a space-separated command line. Shell calls render
// as "sh -c <script>".
func (c Call) Line() string {
	if c.Script != "" {
		return "sh -c " + c.Script
	}
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// New returns an empty fake.
func New() *Runner {
	return &Runner{
		exact:    make(map[string][]Response),
		prefixes: make(map[string][]Response),
		paths:    make(map[string]string),
	}
}

// On queues resp for the exact command line. Queued responses are consumed in
// order; the last one repeats.
func (r *Runner) On(line string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact[line] = append(r.exact[line], resp)
	return r
}

// OnPrefix queues resp for every command line starting with prefix.
func (r *Runner) OnPrefix(prefix string, resp Response) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = append(r.prefixes[prefix], resp)
	return r
}

// WithPath makes LookPath(name) resolve to path.
func (r *Runner) WithPath(name, path string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[name] = path
	return r
}

// Calls returns a copy of the recorded calls.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded command lines.
func (r *Runner) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Ran reports whether a command line starting with prefix was recorded.
func (r *Runner) Ran(prefix string) bool {
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Run implements runner.Runner.
func (r *Runner) Run(ctx context.Context, c runner.Cmd) (types.ExitCode, error) {
	resp := r.record(Call{Name: c.Name, Args: c.Args, Dir: c.Dir, Env: c.Env})
	if err := ctx.Err(); err != nil {
		return types.ExitFailure, err
	}
	if resp.Err != nil {
		return types.ExitFailure, resp.Err
	}
	writeTo(c.Stdout, resp.Stdout)
	writeTo(c.Stderr, resp.Stderr)
	return resp.Code, nil
}

// Output implements runner.Runner.
func (r *Runner) Output(ctx context.Context, c runner.Cmd) ([]byte, error) {
	resp := r.record(Call{Name: c.Name, Args: c.Args, Dir: c.Dir, Env: c.Env})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	writeTo(c.Stderr, resp.Stderr)
	if !resp.Code.IsSuccess() {
		return []byte(resp.Stdout), &runner.ExitError{Name: c.Name, Code: resp.Code, Stderr: []byte(resp.Stderr)}
	}
	return []byte(resp.Stdout), nil
}

// Shell implements runner.Runner.
func (r *Runner) Shell(ctx context.Context, script string, c runner.Cmd) (types.ExitCode, error) {
	resp := r.record(Call{Script: script, Dir: c.Dir, Env: c.Env})
	if err := ctx.Err(); err != nil {
		return types.ExitFailure, err
	}
	if resp.Err != nil {
		return types.ExitFailure, resp.Err
	}
	writeTo(c.Stdout, resp.Stdout)
	writeTo(c.Stderr, resp.Stderr)
	return resp.Code, nil
}

// LookPath implements runner.Runner.
func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path, ok := r.paths[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (r *Runner) record(call Call) Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)

	line := call.Line()
	if resp, ok := pop(r.exact, line); ok {
		return r.apply(call, resp)
	}

	best := ""
	for prefix := range r.prefixes {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		resp, _ := pop(r.prefixes, best)
		return r.apply(call, resp)
	}
	return Response{}
}

func (r *Runner) apply(call Call, resp Response) Response {
	if resp.Do != nil {
		r.mu.Unlock()
		resp.Do(call)
		r.mu.Lock()
	}
	return resp
}

func pop(m map[string][]Response, key string) (Response, bool) {
	queue, ok := m[key]
	if !ok || len(queue) == 0 {
		return Response{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		m[key] = queue[1:]
	}
	return resp, true
}

func writeTo(w io.Writer, s string) {
	if w == nil || s == "" {
		return
	}
	_, _ = fmt.Fprint(w, s)
}
