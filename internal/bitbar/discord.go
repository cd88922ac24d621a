// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/discord"
)

// Discord shows how many people are in voice channels across all guilds. A
// failed guild makes the count "?" and is explained in the menu. Nothing is
// printed when nobody is connected.
func Discord(w *Writer, cfg *config.DiscordConfig, results []discord.Result, icons Icons) {
	total := 0
	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			continue
		}
		for _, ch := range r.State.Channels {
			if !cfg.IsIgnoredChannel(string(ch.Snowflake)) {
				total += len(ch.Members)
			}
		}
	}
	if total == 0 && !failed {
		return
	}

	title := strconv.Itoa(total)
	if failed {
		title = "?"
	}
	w.Item(title, TemplateImage(icons.Discord))

	for _, r := range results {
		if r.Err != nil {
			w.Sep()
			w.Item(Escape(fmt.Sprintf("%s for %s: %v", errorKind(r.Err), r.Guild.Name, r.Err)))
			continue
		}
		for _, ch := range r.State.Channels {
			if len(ch.Members) == 0 || cfg.IsIgnoredChannel(string(ch.Snowflake)) {
				continue
			}
			w.Sep()
			w.Item(Escape(r.Guild.Name + "#" + ch.Name))
			for _, m := range ch.Members {
				w.Item(Escape(m.Username + "#" + string(m.Discriminator)))
			}
		}
	}
}

// FetchDiscord loads the guild list and fetches all guilds.
func FetchDiscord(ctx context.Context, c *discord.Client) (*config.DiscordConfig, []discord.Result, error) {
	cfg, err := config.LoadDiscord(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, c.FetchAll(ctx, cfg.Guilds), nil
}

func errorKind(err error) string {
	var statusErr *discord.StatusError
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "Timeout"
	case errors.As(err, &statusErr):
		return "HTTPError"
	case errors.As(err, &urlErr):
		return "ConnectionError"
	default:
		return "Error"
	}
}
