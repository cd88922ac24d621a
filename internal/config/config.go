// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"syncbin-cli/internal/issue"

	"github.com/spf13/viper"
)

const (
	// SyncbinFile is the main config file, relative to a config directory.
	SyncbinFile = "fenhl/syncbin.json"

	// DiscordFile is the Discord plugin config, relative to a config directory.
	DiscordFile = "bitbar/plugins/discord.json"

	// DefaultGitDir is used when $GITDIR is unset.
	DefaultGitDir = "/opt/git"
)

type (
	// Config is the decoded fenhl/syncbin.json.
	Config struct {
		Rust       RustConfig       `mapstructure:"rust" json:"rust"`
		Diskspace  DiskspaceConfig  `mapstructure:"diskspace" json:"diskspace"`
		InfoBeamer InfoBeamerConfig `mapstructure:"info-beamer" json:"info-beamer"`
		Bootstrap  BootstrapConfig  `mapstructure:"bootstrap" json:"bootstrap"`
	}

	RustConfig struct {
		Projects []string `mapstructure:"projects" json:"projects"`
	}

	DiskspaceConfig struct {
		Volumes []string `mapstructure:"volumes" json:"volumes"`
	}

	// InfoBeamerConfig maps node names to the command line that runs them.
	// Viper folds keys to lower case, so node names match case-insensitively.
	InfoBeamerConfig struct {
		Nodes map[string][]string `mapstructure:"nodes" json:"nodes"`
	}

	BootstrapConfig struct {
		// PackageManager is "apt-get", "brew", or empty to detect.
		PackageManager string `mapstructure:"package_manager" json:"package_manager"`
		// PrivateRemote is the clone URL of the syncbin-private repository.
		PrivateRemote string `mapstructure:"private_remote" json:"private_remote"`
	}

	// DiscordConfig is the decoded bitbar/plugins/discord.json.
	DiscordConfig struct {
		Guilds          []Guild  `mapstructure:"guilds" json:"guilds"`
		IgnoredChannels []string `mapstructure:"ignoredChannels" json:"ignoredChannels"`
	}

	// Guild is one Discord voice-state endpoint.
	Guild struct {
		Name     string `mapstructure:"name" json:"name"`
		APIURL   string `mapstructure:"apiUrl" json:"apiUrl"`
		Username string `mapstructure:"username" json:"username,omitempty"`
		Password string `mapstructure:"password" json:"password,omitempty"`
	}
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Diskspace:  DiskspaceConfig{Volumes: []string{"/"}},
		InfoBeamer: InfoBeamerConfig{Nodes: map[string][]string{}},
	}
}

// HasAuth reports whether basic auth should be sent.
func (g Guild) HasAuth() bool {
	return g.Username != "" || g.Password != ""
}

// GitDir returns $GITDIR or /opt/git.
func GitDir() string {
	if dir := os.Getenv("GITDIR"); dir != "" {
		return dir
	}
	return DefaultGitDir
}

// SyncbinRepoDir returns the checkout of the syncbin repository itself.
func SyncbinRepoDir() string {
	return filepath.Join(GitDir(), "github.com", "fenhl", "syncbin", "master")
}

// ResolvePath returns the file Load would read: explicit when given,
// otherwise the first existing SyncbinFile. The bool is false when no file
// exists and defaults apply.
func ResolvePath(opts LoadOptions) (string, bool) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, fileExists(opts.ConfigFilePath)
	}
	return FindConfig(SyncbinFile)
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("diskspace.volumes", defaults.Diskspace.Volumes)
	v.SetDefault("bootstrap.package_manager", "")
	v.SetDefault("bootstrap.private_remote", "")

	path, found := ResolvePath(opts)
	if opts.ConfigFilePath != "" && !found {
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path passed to --config").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	if found {
		if err := loadCUEIntoViper(v, path, "#Config"); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid JSON").
				WithSuggestion("Run 'syncbin config show' to see the defaults").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	} else {
		path = ""
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.InfoBeamer.Nodes == nil {
		cfg.InfoBeamer.Nodes = map[string][]string{}
	}
	return cfg, path, nil
}

// LoadDiscord reads the Discord plugin config. A missing file yields an empty
// config.
func LoadDiscord(ctx context.Context) (*DiscordConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := &DiscordConfig{}
	path, found := FindConfig(DiscordFile)
	if !found {
		return cfg, nil
	}

	v := viper.New()
	if err := loadCUEIntoViper(v, path, "#Discord"); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load Discord plugin configuration").
			WithResource(path).
			WithSuggestion("Every guild needs a name and an http(s) apiUrl").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// IsIgnoredChannel reports whether the channel snowflake is ignored.
func (c *DiscordConfig) IsIgnoredChannel(snowflake string) bool {
	if snowflake == "" {
		return false
	}
	for _, ignored := range c.IgnoredChannels {
		if ignored == snowflake {
			return true
		}
	}
	return false
}
