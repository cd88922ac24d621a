// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"syncbin-cli/internal/dag"
	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/runner"
)

// Installed is the result of a setup's probe.
type Installed int

const (
	Unknown Installed = iota
	Yes
	No
)

type (
	// Setup is one named provisioning action.
	Setup struct {
		Name    string
		Summary string
		// Doc is Markdown shown by `syncbin describe`.
		Doc      string
		Requires []string
		// Packages are installed through the detected package manager before
		// Run is called.
		Packages map[Manager][]string
		Run      func(ctx context.Context, env *Env) error
		// Probe is optional; without it the state is Unknown.
		Probe func(ctx context.Context, env *Env) (Installed, error)
	}

	// Registry is the table of known setups.
	Registry struct {
		setups map[string]*Setup
		names  []string
	}

	// Step is one entry of an execution plan.
	Step struct {
		Setup *Setup
		// Explicit is true for setups named on the command line; they always
		// run.
		Explicit bool
	}

	// SetupStatus is one row of `syncbin status`.
	SetupStatus struct {
		Name      string
		Summary   string
		Requires  []string
		Installed Installed
		Err       error
	}

	// UnknownSetupError reports names missing from the registry.
	UnknownSetupError struct {
		Names     []string
		Available []string
	}

	// SetupError wraps the failure of one setup.
	SetupError struct {
		Name string
		Err  error
	}
)

func (i Installed) String() string {
	switch i {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

func (e *UnknownSetupError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, name := range e.Names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("unknown setup for `syncbin bootstrap`: %s (available setups: %s)",
		strings.Join(quoted, ", "), strings.Join(e.Available, ", "))
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Name, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewRegistry builds a registry. Names must be unique and non-empty, every
// setup needs a Run function, and every requirement must be registered.
func NewRegistry(setups ...Setup) (*Registry, error) {
	r := &Registry{setups: make(map[string]*Setup, len(setups))}
	for i := range setups {
		s := setups[i]
		if s.Name == "" {
			return nil, fmt.Errorf("setup %d has no name", i)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("setup %q has no run function", s.Name)
		}
		if _, dup := r.setups[s.Name]; dup {
			return nil, fmt.Errorf("duplicate setup %q", s.Name)
		}
		r.setups[s.Name] = &s
		r.names = append(r.names, s.Name)
	}
	for _, s := range r.setups {
		for _, req := range s.Requires {
			if _, ok := r.setups[req]; !ok {
				return nil, fmt.Errorf("setup %q requires unknown setup %q", s.Name, req)
			}
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Get looks up a setup by name.
func (r *Registry) Get(name string) (*Setup, bool) {
	s, ok := r.setups[name]
	return s, ok
}

// Validate returns *UnknownSetupError if any name is not registered.
func (r *Registry) Validate(names ...string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := r.setups[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return &UnknownSetupError{Names: unknown, Available: r.Names()}
	}
	return nil
}

// Plan validates names and returns them with their transitive prerequisites
// in run order.
func (r *Registry) Plan(names ...string) ([]Step, error) {
	if err := r.Validate(names...); err != nil {
		return nil, err
	}

	order, err := dag.Expand(names, func(name string) ([]string, bool) {
		s, ok := r.setups[name]
		if !ok {
			return nil, false
		}
		return s.Requires, true
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("order setups").
			WithResource(strings.Join(names, ", ")).
			WithIssue(issue.SetupCycleId).
			Wrap(err).
			BuildError()
	}

	steps := make([]Step, len(order))
	for i, name := range order {
		steps[i] = Step{Setup: r.setups[name], Explicit: slices.Contains(names, name)}
	}
	return steps, nil
}

// Bootstrap runs the named setups and their prerequisites. Nothing runs if
// any name is unknown.
func (r *Registry) Bootstrap(ctx context.Context, env *Env, names ...string) error {
	steps, err := r.Plan(names...)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := step.Setup

		if !step.Explicit {
			state, _ := probe(ctx, env, s)
			if state == Yes {
				env.Status.Info("%s already set up, skipping", s.Name)
				continue
			}
			env.Status.Info("setting up %s (required by %s)", s.Name, strings.Join(dependents(steps, s.Name), ", "))
		}

		if err := installPackages(ctx, env, s); err != nil {
			return &SetupError{Name: s.Name, Err: err}
		}
		if err := s.Run(ctx, env); err != nil {
			return &SetupError{Name: s.Name, Err: err}
		}
	}
	return nil
}

// Status probes every setup.
func (r *Registry) Status(ctx context.Context, env *Env) []SetupStatus {
	rows := make([]SetupStatus, 0, len(r.names))
	for _, name := range r.names {
		s := r.setups[name]
		state, err := probe(ctx, env, s)
		rows = append(rows, SetupStatus{
			Name:      name,
			Summary:   s.Summary,
			Requires:  slices.Clone(s.Requires),
			Installed: state,
			Err:       err,
		})
	}
	return rows
}

func probe(ctx context.Context, env *Env, s *Setup) (Installed, error) {
	if s.Probe == nil {
		return Unknown, nil
	}
	state, err := s.Probe(ctx, env)
	if err != nil {
		return Unknown, err
	}
	return state, nil
}

func dependents(steps []Step, name string) []string {
	var out []string
	for _, step := range steps {
		if slices.Contains(step.Setup.Requires, name) {
			out = append(out, step.Setup.Name)
		}
	}
	return out
}

func installPackages(ctx context.Context, env *Env, s *Setup) error {
	if len(s.Packages) == 0 {
		return nil
	}
	mgr, err := env.Manager()
	if err != nil {
		return err
	}
	pkgs := s.Packages[mgr]
	if len(pkgs) == 0 {
		return nil
	}
	env.Status.Info("installing %s with %s", strings.Join(pkgs, " "), mgr)
	if err := runner.Check(ctx, env.Runner, env.cmd(mgr.InstallCommand(pkgs))); err != nil {
		return fmt.Errorf("install packages: %w", err)
	}
	return nil
}

// IsUnknownSetup reports whether err is an *UnknownSetupError.
func IsUnknownSetup(err error) bool {
	var target *UnknownSetupError
	return errors.As(err, &target)
}
