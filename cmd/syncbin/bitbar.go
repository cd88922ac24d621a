// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"syncbin-cli/internal/bitbar"
	"syncbin-cli/internal/discord"
	"syncbin-cli/internal/twitch"
	"syncbin-cli/internal/version"

	"github.com/spf13/cobra"
)

func newBitbarCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bitbar",
		Short: "Menu bar plugins in bitbar format",
		Long: `Menu bar plugins in bitbar format. Link a plugin into the bitbar plugin
directory as bitbar-<name>, or call 'syncbin bitbar <name>' from a wrapper.
Plugins print nothing when there is nothing worth showing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newBitbarBatteryCommand(app),
		newBitbarVolumeCommand(app),
		newBitbarDiskspaceCommand(app),
		newBitbarDiscordCommand(app),
		newBitbarTwitchCommand(app),
	)
	return cmd
}

// plugin wraps a bitbar renderer as a command writing to stdout.
func plugin(app *App, use, short string, render func(ctx context.Context, w *bitbar.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := bitbar.NewWriter(app.stdout)
			if err := render(cmd.Context(), w); err != nil {
				return err
			}
			return w.Err()
		},
	}
}

func newBitbarBatteryCommand(app *App) *cobra.Command {
	return plugin(app, "battery", "Battery level when low or charging", func(ctx context.Context, w *bitbar.Writer) error {
		state, err := app.Battery.Battery(ctx)
		if err != nil {
			// Machines without a battery show nothing.
			return nil
		}
		bitbar.Battery(w, state, bitbar.DefaultIcons())
		return nil
	})
}

func newBitbarVolumeCommand(app *App) *cobra.Command {
	return plugin(app, "volume", "Output volume when muted, low or high", func(ctx context.Context, w *bitbar.Writer) error {
		state, err := app.Volume.Volume(ctx)
		if err != nil {
			return err
		}
		bitbar.Volume(w, state)
		return nil
	})
}

func newBitbarDiskspaceCommand(app *App) *cobra.Command {
	return plugin(app, "diskspace", "Free space of the configured volumes when low", func(ctx context.Context, w *bitbar.Writer) error {
		cfg, err := app.loadConfig(ctx)
		if err != nil {
			return err
		}
		bitbar.Diskspace(w, bitbar.ProbeVolumes(ctx, app.Prober, cfg.Diskspace.Volumes))
		return nil
	})
}

func newBitbarDiscordCommand(app *App) *cobra.Command {
	return plugin(app, "discord", "Members in Discord voice channels", func(ctx context.Context, w *bitbar.Writer) error {
		icons := bitbar.DefaultIcons()
		client := discord.NewClient(
			discord.WithHTTPClient(app.HTTPClient),
			discord.WithUserAgent("syncbin/"+version.Get()),
		)
		cfg, results, err := bitbar.FetchDiscord(ctx, client)
		if err != nil {
			w.Item("?", bitbar.TemplateImage(icons.Discord))
			w.Sep()
			w.Item(bitbar.Escape(err.Error()))
			return nil
		}
		bitbar.Discord(w, cfg, results, icons)
		return nil
	})
}

func newBitbarTwitchCommand(app *App) *cobra.Command {
	cmd := plugin(app, "twitch", "Live streams of followed Twitch channels", func(ctx context.Context, w *bitbar.Writer) error {
		token, err := twitch.ReadAccessToken()
		if err != nil {
			return err
		}
		self, err := os.Executable()
		if err != nil {
			self = "syncbin"
		}
		p := &bitbar.Twitch{
			Fetcher: twitch.NewClient(
				twitch.WithHTTPClient(app.HTTPClient),
				twitch.WithToken(token),
				twitch.WithUserAgent("syncbin/"+version.Get()),
			),
			Runner:      app.Runner,
			Token:       token,
			CachePath:   twitch.CachePath(),
			Streamlink:  bitbar.DefaultStreamlink,
			Self:        self,
			SelfArgs:    []string{"bitbar", "twitch"},
			Icons:       bitbar.DefaultIcons(),
			Now:         app.Clock.Now,
			Concurrency: 4,
		}
		return p.Render(ctx, w)
	})

	cmd.AddCommand(
		&cobra.Command{
			Use:   "defer <period>",
			Short: "Hide the plugin for a while (20m, 1h, 4h, 1d or 1w)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := twitch.LookupDelta(args[0])
				if err != nil {
					return err
				}
				return updateTwitchCache(func(c *twitch.Cache) { c.DeferUntil(app.Clock.Now(), d) })
			},
		},
		&cobra.Command{
			Use:   "hide-stream <channel-id>",
			Short: "Hide a channel until it goes offline",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseChannelID(args[0])
				if err != nil {
					return err
				}
				return updateTwitchCache(func(c *twitch.Cache) { c.HideStream(id) })
			},
		},
		&cobra.Command{
			Use:   "hide-game <channel-id> <game>",
			Short: "Hide a channel while it streams a game",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseChannelID(args[0])
				if err != nil {
					return err
				}
				return updateTwitchCache(func(c *twitch.Cache) { c.HideGame(id, args[1]) })
			},
		},
	)
	return cmd
}

func parseChannelID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid channel id %q", s)
	}
	return id, nil
}

func updateTwitchCache(update func(*twitch.Cache)) error {
	path := twitch.CachePath()
	cache, err := twitch.LoadCache(path)
	if err != nil {
		return err
	}
	update(cache)
	return cache.Save(path)
}
