// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/status"
)

const (
	// DefaultPyDir holds the symlinked Python libraries.
	DefaultPyDir = "/opt/py"
	// DefaultSudoersDir is where the sudo setup writes its drop-in.
	DefaultSudoersDir = "/etc/sudoers.d"
)

// Env is everything a setup may touch. Paths are fields so tests can point
// them into a temporary directory.
type Env struct {
	Runner runner.Runner
	Status *status.Printer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Home       string
	GitDir     string
	PyDir      string
	SudoersDir string
	Username   string

	// PrivateRemote is the clone URL of syncbin-private.
	PrivateRemote string
	// PackageManager overrides detection when set.
	PackageManager Manager

	detected Manager
}

// NewEnv builds an Env from the loaded configuration and the process
// environment.
func NewEnv(r runner.Runner, cfg *config.Config, p *status.Printer, stdin io.Reader, stdout, stderr io.Writer) *Env {
	home := config.HomeDir()
	env := &Env{
		Runner:     r,
		Status:     p,
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
		Home:       home,
		GitDir:     config.GitDir(),
		PyDir:      DefaultPyDir,
		SudoersDir: DefaultSudoersDir,
		Username:   currentUser(),
	}
	if cfg != nil {
		env.PrivateRemote = cfg.Bootstrap.PrivateRemote
		env.PackageManager = Manager(cfg.Bootstrap.PackageManager)
	}
	return env
}

// Confirm prints prompt and waits for a line on Stdin.
func (e *Env) Confirm(prompt string) error {
	fmt.Fprintf(e.Stdout, "[ ?? ] %s", prompt)
	if e.Stdin == nil {
		fmt.Fprintln(e.Stdout)
		return nil
	}
	_, err := bufio.NewReader(e.Stdin).ReadString('\n')
	if err == io.EOF {
		fmt.Fprintln(e.Stdout)
		return nil
	}
	return err
}

// interactive returns a command attached to the terminal.
func (e *Env) interactive(name string, args ...string) runner.Cmd {
	return runner.Cmd{Name: name, Args: args, Stdin: e.Stdin, Stdout: e.Stdout, Stderr: e.Stderr}
}

func (e *Env) cmd(argv []string) runner.Cmd {
	return e.interactive(argv[0], argv[1:]...)
}

func (e *Env) githubRepo(name string) string {
	return filepath.Join(e.GitDir, "github.com", "fenhl", name)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
