// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"syncbin-cli/internal/runner"
)

const (
	rustupInstallScript = "curl https://sh.rustup.rs -sSf | sh -s -- --no-modify-path"
	noBatteryScript     = "#!/bin/sh\n\nexit 0\n"
)

var pythonModules = []string{"blessings", "docopt", "requests"}

// pyLibs maps a fenhl GitHub repository to the module file linked into PyDir.
var pyLibs = []struct{ repo, file string }{
	{"python-xdg-basedir", "basedir.py"},
	{"lazyjson", "lazyjson.py"},
}

// Default returns the built-in setups.
func Default() *Registry {
	r, err := NewRegistry(
		Setup{
			Name:     "debian-root",
			Summary:  "time sync, Ruby headers and a setuid ping on Debian",
			Doc:      debianRootDoc,
			Packages: map[Manager][]string{AptGet: {"ntp", "ruby-dev"}},
			Run:      runDebianRoot,
			Probe:    probeDebianRoot,
		},
		Setup{
			Name:     "gitdir",
			Summary:  "clone gitdir and link it into the Python path",
			Doc:      gitdirDoc,
			Requires: []string{"python"},
			Packages: map[Manager][]string{AptGet: {"git"}, Brew: {"git"}},
			Run:      runGitdir,
			Probe:    probeGitdir,
		},
		Setup{
			Name:    "no-battery",
			Summary: "install a batcharge stub for machines without a battery",
			Doc:     noBatteryDoc,
			Run:     runNoBattery,
			Probe:   probeNoBattery,
		},
		Setup{
			Name:     "python",
			Summary:  "pip modules and the /opt/py library directory",
			Doc:      pythonDoc,
			Packages: map[Manager][]string{AptGet: {"python3-pip"}, Brew: {"python"}},
			Run:      runPython,
			Probe:    probePython,
		},
		Setup{
			Name:     "rust",
			Summary:  "install rustup",
			Doc:      rustDoc,
			Packages: map[Manager][]string{AptGet: {"curl"}},
			Run:      runRust,
			Probe:    probeRust,
		},
		Setup{
			Name:    "sudo",
			Summary: "passwordless sudo for the current user",
			Doc:     sudoDoc,
			Run:     runSudo,
			Probe:   probeSudo,
		},
		Setup{
			Name:     "syncbin-private",
			Summary:  "clone the private syncbin repository",
			Doc:      syncbinPrivateDoc,
			Requires: []string{"gitdir"},
			Run:      runSyncbinPrivate,
			Probe:    probeSyncbinPrivate,
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func runDebianRoot(ctx context.Context, env *Env) error {
	ping, err := env.Runner.LookPath("ping")
	if err != nil {
		return fmt.Errorf("find ping: %w", err)
	}
	return runner.Check(ctx, env.Runner, env.interactive("sudo", "chmod", "u+s", ping))
}

func probeDebianRoot(_ context.Context, env *Env) (Installed, error) {
	ping, err := env.Runner.LookPath("ping")
	if err != nil {
		return No, nil
	}
	info, err := os.Stat(ping)
	if err != nil {
		return Unknown, err
	}
	return installedIf(info.Mode()&fs.ModeSetuid != 0), nil
}

func runGitdir(ctx context.Context, env *Env) error {
	repo := env.githubRepo("gitdir")
	if err := cloneInto(ctx, env, repo, "https://github.com/fenhl/gitdir.git"); err != nil {
		return err
	}
	link := filepath.Join(env.PyDir, "gitdir")
	if exists(link) {
		return nil
	}
	if !exists(env.PyDir) {
		return errors.New("run `syncbin bootstrap python` first")
	}
	return symlink(ctx, env, filepath.Join(repo, "master", "gitdir"), link)
}

func probeGitdir(_ context.Context, env *Env) (Installed, error) {
	return installedIf(exists(filepath.Join(env.githubRepo("gitdir"), "master")) &&
		exists(filepath.Join(env.PyDir, "gitdir"))), nil
}

func runNoBattery(_ context.Context, env *Env) error {
	path := filepath.Join(env.Home, "bin", "batcharge")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(noBatteryScript), 0o755); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0o755)
}

func probeNoBattery(_ context.Context, env *Env) (Installed, error) {
	return installedIf(exists(filepath.Join(env.Home, "bin", "batcharge"))), nil
}

func runPython(ctx context.Context, env *Env) error {
	pip := env.interactive("pip3", append([]string{"install"}, pythonModules...)...)
	if err := runner.Check(ctx, env.Runner, pip); err != nil {
		return err
	}
	if !exists(env.PyDir) {
		if err := runner.Check(ctx, env.Runner, env.interactive("sudo", "mkdir", env.PyDir)); err != nil {
			return err
		}
	}
	if !exists(filepath.Join(env.PyDir, "gitdir")) {
		env.Status.Info("run `syncbin bootstrap gitdir`, then re-run `syncbin bootstrap python` to install essentials from github")
		return nil
	}
	for _, lib := range pyLibs {
		repo := env.githubRepo(lib.repo)
		if err := cloneInto(ctx, env, repo, "https://github.com/fenhl/"+lib.repo+".git"); err != nil {
			return err
		}
		link := filepath.Join(env.PyDir, lib.file)
		if exists(link) {
			continue
		}
		if err := runner.Check(ctx, env.Runner, env.interactive("sudo", "ln", "-s", filepath.Join(repo, "master", lib.file), link)); err != nil {
			return err
		}
	}
	return nil
}

func probePython(_ context.Context, env *Env) (Installed, error) {
	for _, lib := range pyLibs {
		if !exists(filepath.Join(env.PyDir, lib.file)) {
			return No, nil
		}
	}
	return Yes, nil
}

func runRust(ctx context.Context, env *Env) error {
	code, err := env.Runner.Shell(ctx, rustupInstallScript, runner.Cmd{Stdin: env.Stdin, Stdout: env.Stdout, Stderr: env.Stderr})
	if err != nil {
		return err
	}
	if !code.IsSuccess() {
		return &runner.ExitError{Name: "rustup-init", Code: code}
	}
	return nil
}

func probeRust(_ context.Context, env *Env) (Installed, error) {
	if _, err := env.Runner.LookPath("rustup"); err == nil {
		return Yes, nil
	}
	return installedIf(exists(filepath.Join(env.Home, ".cargo", "bin", "rustup"))), nil
}

func runSudo(ctx context.Context, env *Env) error {
	if !exists(env.SudoersDir) {
		if err := runner.Check(ctx, env.Runner, env.interactive("sudo", "mkdir", "-p", env.SudoersDir)); err != nil {
			return err
		}
	}
	env.Status.Info("For passwordless login, insert the following line into the opened document:")
	fmt.Fprintf(env.Stdout, "%s ALL=(ALL) NOPASSWD: ALL\n", env.Username)
	if err := env.Confirm("Press return to continue"); err != nil {
		return err
	}
	return runner.Check(ctx, env.Runner, env.interactive("sudo", "nano", filepath.Join(env.SudoersDir, env.Username)))
}

func probeSudo(_ context.Context, env *Env) (Installed, error) {
	_, err := os.Stat(filepath.Join(env.SudoersDir, env.Username))
	switch {
	case err == nil:
		return Yes, nil
	case errors.Is(err, fs.ErrNotExist):
		return No, nil
	default:
		// sudoers.d is usually unreadable for the user being probed.
		return Unknown, nil
	}
}

func runSyncbinPrivate(ctx context.Context, env *Env) error {
	if env.PrivateRemote == "" {
		return errors.New("no clone URL for syncbin-private: set bootstrap.private_remote in syncbin.json")
	}
	return cloneInto(ctx, env, privateRepo(env), env.PrivateRemote)
}

func probeSyncbinPrivate(_ context.Context, env *Env) (Installed, error) {
	return installedIf(exists(filepath.Join(privateRepo(env), "master"))), nil
}

func privateRepo(env *Env) string {
	return filepath.Join(env.GitDir, "fenhl.net", "syncbin-private")
}

// cloneInto clones url as <repo>/master unless it is already there.
func cloneInto(ctx context.Context, env *Env, repo, url string) error {
	if exists(filepath.Join(repo, "master")) {
		return nil
	}
	if err := os.MkdirAll(repo, 0o755); err != nil {
		return err
	}
	clone := env.interactive("git", "clone", url, "master")
	clone.Dir = repo
	return runner.Check(ctx, env.Runner, clone)
}

// symlink links link to target, escalating through sudo when the directory
// is not writable.
func symlink(ctx context.Context, env *Env, target, link string) error {
	err := os.Symlink(target, link)
	if err == nil || !errors.Is(err, fs.ErrPermission) {
		return err
	}
	return runner.Check(ctx, env.Runner, env.interactive("sudo", "ln", "-s", target, link))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func installedIf(ok bool) Installed {
	if ok {
		return Yes
	}
	return No
}
