// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"syncbin-cli/internal/bitbar"
	"syncbin-cli/internal/bootstrap"
	"syncbin-cli/internal/config"
	"syncbin-cli/internal/diskspace"
	"syncbin-cli/internal/playlist"
	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/status"
	"syncbin-cli/internal/tools"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every cobra command handler receives an App reference and reaches
	// subprocesses, configuration, disks, the network and the clock only through it.
	App struct {
		Runner     runner.Runner
		Config     config.Provider
		Prober     diskspace.Prober
		Battery    bitbar.BatterySource
		Volume     bitbar.VolumeSource
		HTTPClient *http.Client
		Clock      tools.Clock
		Getenv     func(string) string
		Registry   *bootstrap.Registry
		DialMPD    func(playlist.Config) (playlist.Client, error)
		WatchMPD   func(playlist.Config) (playlist.Watcher, error)

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Runner     runner.Runner
		Config     config.Provider
		Prober     diskspace.Prober
		Battery    bitbar.BatterySource
		Volume     bitbar.VolumeSource
		HTTPClient *http.Client
		Clock      tools.Clock
		Getenv     func(string) string
		Registry   *bootstrap.Registry
		DialMPD    func(playlist.Config) (playlist.Client, error)
		WatchMPD   func(playlist.Config) (playlist.Watcher, error)
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Runner == nil {
		deps.Runner = runner.New()
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Prober == nil {
		deps.Prober = diskspace.NewProber(deps.Runner)
	}
	if deps.Battery == nil {
		deps.Battery = bitbar.NewBatterySource(deps.Runner)
	}
	if deps.Volume == nil {
		deps.Volume = bitbar.OSAScript{Runner: deps.Runner}
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	if deps.Clock == nil {
		deps.Clock = tools.SystemClock{}
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Registry == nil {
		deps.Registry = bootstrap.Default()
	}
	if deps.DialMPD == nil {
		deps.DialMPD = playlist.Dial
	}
	if deps.WatchMPD == nil {
		deps.WatchMPD = playlist.Watch
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Runner:     deps.Runner,
		Config:     deps.Config,
		Prober:     deps.Prober,
		Battery:    deps.Battery,
		Volume:     deps.Volume,
		HTTPClient: deps.HTTPClient,
		Clock:      deps.Clock,
		Getenv:     deps.Getenv,
		Registry:   deps.Registry,
		DialMPD:    deps.DialMPD,
		WatchMPD:   deps.WatchMPD,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// loadConfig loads syncbin.json, honoring --config.
func (app *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.configPath})
}

func (app *App) printer(quiet bool) *status.Printer {
	return status.New(app.stdout, app.stderr, quiet)
}

// stderrPrinter sends every status line to stderr, keeping stdout clean for
// scripted callers.
func (app *App) stderrPrinter() *status.Printer {
	return status.New(app.stderr, app.stderr, false)
}

// fatal prints "[!!!!] msg" and returns the already-reported exit.
func (app *App) fatal(format string, args ...any) error {
	app.printer(false).Fatal(format, args...)
	return &ExitError{Code: 1}
}

// configureLogging installs the charm logger as the slog handler. Logs go to
// stderr only; stdout belongs to bitbar and shell prompts. The process-wide
// default is replaced only when writing to the real stderr, so in-memory
// streams of embedded Apps never receive another App's logs.
func (app *App) configureLogging() {
	level := log.WarnLevel
	if app.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(app.stderr, log.Options{
		Prefix: "syncbin",
		Level:  level,
	})
	if f, ok := app.stderr.(*os.File); ok && f == os.Stderr {
		slog.SetDefault(slog.New(logger))
	}
}
