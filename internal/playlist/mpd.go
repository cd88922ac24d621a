// SPDX-License-Identifier: MPL-2.0

package playlist

import (
	"net"
	"path/filepath"
	"strings"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/issue"

	"github.com/fhs/gompd/v2/mpd"
)

const (
	defaultHost = "localhost"
	defaultPort = "6600"
)

type (
	// Client is the subset of the MPD protocol the playlist commands use.
	Client interface {
		PlaylistInfo(start, end int) ([]mpd.Attrs, error)
		ListInfo(uri string) ([]mpd.Attrs, error)
		Add(uri string) error
		CurrentSong() (mpd.Attrs, error)
		Status() (mpd.Attrs, error)
		Single(on bool) error
		Close() error
	}

	// Watcher delivers the names of changed MPD subsystems.
	Watcher interface {
		Events() <-chan string
		Errors() <-chan error
		Close() error
	}

	// Config locates the MPD server and the music directory.
	Config struct {
		Network  string
		Addr     string
		Password string
		// Root is the music directory used by add-from.
		Root string
	}

	client struct {
		*mpd.Client
	}

	watcher struct {
		w *mpd.Watcher
	}
)

// ConfigFromEnv reads MPD_HOST, MPD_PORT and MPD_ROOT the way mpc does:
// MPD_HOST may carry a "password@" prefix or name a unix socket.
func ConfigFromEnv(getenv func(string) string) Config {
	host := getenv("MPD_HOST")
	var password string
	if at := strings.LastIndex(host, "@"); at > 0 {
		password, host = host[:at], host[at+1:]
	}
	if host == "" {
		host = defaultHost
	}
	port := getenv("MPD_PORT")
	if port == "" {
		port = defaultPort
	}

	root := getenv("MPD_ROOT")
	if root == "" {
		root = filepath.Join(config.HomeDir(), "Music")
	}

	if strings.HasPrefix(host, "/") || strings.HasPrefix(host, "@") {
		return Config{Network: "unix", Addr: host, Password: password, Root: root}
	}
	return Config{Network: "tcp", Addr: net.JoinHostPort(host, port), Password: password, Root: root}
}

// Dial connects to MPD.
func Dial(cfg Config) (Client, error) {
	c, err := mpd.DialAuthenticated(cfg.Network, cfg.Addr, cfg.Password)
	if err != nil {
		return nil, unreachable(cfg, err)
	}
	return client{c}, nil
}

// Watch opens an idle connection reporting player events.
func Watch(cfg Config) (Watcher, error) {
	w, err := mpd.NewWatcher(cfg.Network, cfg.Addr, cfg.Password, "player")
	if err != nil {
		return nil, unreachable(cfg, err)
	}
	return watcher{w}, nil
}

func unreachable(cfg Config, err error) error {
	return issue.NewErrorContext().
		WithOperation("connect to MPD").
		WithResource(cfg.Network + ":" + cfg.Addr).
		WithSuggestion("check that mpd is running").
		WithSuggestion("set MPD_HOST and MPD_PORT").
		WithIssue(issue.MPDUnreachableId).
		Wrap(err).
		BuildError()
}

func (c client) Single(on bool) error {
	state := 0
	if on {
		state = 1
	}
	return c.Command("single %d", state).OK()
}

func (w watcher) Events() <-chan string { return w.w.Event }
func (w watcher) Errors() <-chan error  { return w.w.Error }
func (w watcher) Close() error          { return w.w.Close() }
