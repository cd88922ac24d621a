// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/issue"
	"syncbin-cli/internal/twitch"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `syncbin config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect syncbin configuration",
		Long: `Inspect syncbin configuration.

syncbin reads fenhl/syncbin.json from $XDG_CONFIG_HOME (default ~/.config)
and then from each directory in $XDG_CONFIG_DIRS; the first file found wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration lookup paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		app.renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path, found := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.configPath}); found {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("GITDIR"), config.GitDir())

	list := func(key string, values []string) {
		fmt.Fprintf(out, "\n%s:\n", keyStyle.Render(key))
		if len(values) == 0 {
			fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
			return
		}
		for _, v := range values {
			fmt.Fprintf(out, "  - %s\n", valueStyle.Render(v))
		}
	}
	list("rust.projects", cfg.Rust.Projects)
	list("diskspace.volumes", cfg.Diskspace.Volumes)

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("info-beamer.nodes"))
	if len(cfg.InfoBeamer.Nodes) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, node := range slices.Sorted(maps.Keys(cfg.InfoBeamer.Nodes)) {
		fmt.Fprintf(out, "  %s: %s\n", node, valueStyle.Render(strings.Join(cfg.InfoBeamer.Nodes[node], " ")))
	}

	manager := cfg.Bootstrap.PackageManager
	if manager == "" {
		manager = "(detect)"
	}
	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("bootstrap"))
	fmt.Fprintf(out, "  package_manager: %s\n", valueStyle.Render(manager))
	fmt.Fprintf(out, "  private_remote: %s\n", valueStyle.Render(cfg.Bootstrap.PrivateRemote))
	return nil
}

func showConfigPath(app *App) error {
	out := app.stdout
	fmt.Fprintf(out, "Config file search path:\n")
	for _, p := range config.ConfigPaths(config.SyncbinFile) {
		fmt.Fprintf(out, "  %s\n", p)
	}
	if app.configPath != "" {
		fmt.Fprintf(out, "Config file override: %s\n", app.configPath)
	}
	fmt.Fprintf(out, "Discord plugin config: %s\n", strings.Join(config.ConfigPaths(config.DiscordFile), ", "))
	fmt.Fprintf(out, "Twitch plugin cache: %s\n", twitch.CachePath())
	fmt.Fprintf(out, "Git checkouts: %s\n", config.GitDir())
	return nil
}
