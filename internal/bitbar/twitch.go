// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"syncbin-cli/internal/runner"
	"syncbin-cli/internal/twitch"

	"golang.org/x/sync/errgroup"
)

// DefaultStreamlink is where Homebrew installs streamlink.
const DefaultStreamlink = "/usr/local/bin/streamlink"

// QualityPreferences are the streamlink qualities tried in order.
var QualityPreferences = []string{"720p60", "720p", "480p", "high"}

var qualityNote = regexp.MustCompile(` \(.+?\)`)

type (
	// StreamsFetcher lists live followed streams.
	StreamsFetcher interface {
		FollowedLive(ctx context.Context) (*twitch.Streams, error)
	}

	// Twitch is the followed-streams plugin.
	Twitch struct {
		Fetcher StreamsFetcher
		Runner  runner.Runner
		// Token is the streamlink OAuth token; empty shows the authenticate
		// entry.
		Token      string
		CachePath  string
		Streamlink string
		// Self and SelfArgs invoke this plugin's subcommands from menu items.
		Self     string
		SelfArgs []string
		Icons    Icons
		Now      func() time.Time
		// Concurrency bounds parallel streamlink probes.
		Concurrency int
	}

	// quality is the streamlink probe result for one stream.
	quality struct {
		chosen    string
		available []string
		err       error
	}
)

// Render writes the plugin output. Failures are rendered as a "?" title with
// the error text, not returned; the returned error is for the output writer
// only.
func (p *Twitch) Render(ctx context.Context, w *Writer) error {
	cache, err := twitch.LoadCache(p.CachePath)
	if err != nil {
		p.renderError(w, err)
		return w.Err()
	}
	if cache.IsDeferred(p.now()) {
		return nil
	}
	if p.Token == "" {
		w.Item("💔", TemplateImage(p.Icons.Twitch))
		w.Sep()
		w.Item("Click to authenticate streamlink", append([]Param{P("terminal", "false")}, Action(p.Streamlink, "--twitch-oauth-authenticate")...)...)
		return w.Err()
	}

	resp, err := p.Fetcher.FollowedLive(ctx)
	if err != nil {
		p.renderError(w, err)
		return w.Err()
	}

	var live []twitch.Stream
	for _, s := range resp.Streams {
		if !s.IsPlaylist {
			live = append(live, s)
		}
	}
	if cache.PruneHidden(live) {
		if err := cache.Save(p.CachePath); err != nil {
			slog.Warn("saving twitch cache", "error", err)
		}
	}
	visible := slices.DeleteFunc(live, func(s twitch.Stream) bool {
		return s.StreamType == "rerun" || cache.IsHidden(s)
	})
	if len(visible) == 0 {
		return nil
	}

	qualities := p.probeQualities(ctx, visible)

	byGame := make(map[string][]int)
	for i, s := range visible {
		byGame[s.Channel.Game] = append(byGame[s.Channel.Game], i)
	}
	games := make([]string, 0, len(byGame))
	for g := range byGame {
		games = append(games, g)
	}
	slices.Sort(games)

	w.Item(strconv.Itoa(len(visible)), TemplateImage(p.Icons.Twitch))
	for _, game := range games {
		w.Sep()
		w.Item(Escape(game))
		for _, i := range byGame[game] {
			p.renderStream(w, visible[i], qualities[i])
		}
	}

	w.Sep()
	w.Item("defer")
	for _, d := range twitch.DeferDeltas {
		params := p.selfAction("defer", d.Name)
		params = append(params, P("terminal", "false"), P("refresh", "true"))
		w.Sub(1, d.Name, params...)
	}
	return w.Err()
}

func (p *Twitch) renderError(w *Writer, err error) {
	w.Item("?", TemplateImage(p.Icons.Twitch))
	w.Sep()
	w.Item(Escape(err.Error()))
}

func (p *Twitch) renderStream(w *Writer, s twitch.Stream, q quality) {
	ch := s.Channel
	w.Item(Escape(ch.DisplayName))
	w.Sub(1, Escape(ch.Status))
	switch {
	case q.chosen != "":
		params := append([]Param{P("terminal", "false")}, Action(p.Streamlink, ch.URL, q.chosen)...)
		w.Sub(1, "📺 live for "+LiveFor(p.now().Sub(s.CreatedAt)), params...)
		w.Sub(1, "📺 "+q.chosen, P("alternate", "true"))
	case len(q.available) > 0:
		w.Sub(1, Escape("📺 available streams: "+strings.Join(q.available, ", ")))
	default:
		w.Sub(1, "📺 no streams available")
	}
	w.Sub(1, fmt.Sprintf("👥 %d viewers", s.Viewers), P("href", "https://twitch.tv/"+ch.Name+"/chat?popout="))
	w.Sep(1)
	id := strconv.FormatInt(ch.ID, 10)
	hideStream := append([]Param{P("terminal", "false")}, p.selfAction("hide-stream", id)...)
	w.Sub(1, "Hide This Stream", append(hideStream, P("refresh", "true"))...)
	hideGame := append([]Param{P("terminal", "false")}, p.selfAction("hide-game", id, s.Game)...)
	w.Sub(1, "Hide This Game", append(hideGame, P("refresh", "true"))...)
}

func (p *Twitch) selfAction(args ...string) []Param {
	return Action(p.Self, append(slices.Clone(p.SelfArgs), args...)...)
}

func (p *Twitch) probeQualities(ctx context.Context, streams []twitch.Stream) []quality {
	out := make([]quality, len(streams))
	var g errgroup.Group
	g.SetLimit(max(p.Concurrency, 1))
	for i, s := range streams {
		g.Go(func() error {
			out[i] = p.probeQuality(ctx, s.Channel.URL)
			return nil
		})
	}
	_ = g.Wait() // probe errors live in out
	return out
}

func (p *Twitch) probeQuality(ctx context.Context, url string) quality {
	stdout, err := p.Runner.Output(ctx, runner.Cmd{Name: p.Streamlink, Args: []string{url}})
	if err != nil {
		return quality{err: err}
	}
	available := ParseAvailableStreams(string(stdout))
	for _, pref := range QualityPreferences {
		if slices.Contains(available, pref) {
			return quality{chosen: pref, available: available}
		}
	}
	return quality{available: available}
}

func (p *Twitch) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// ParseAvailableStreams extracts the qualities from streamlink's
// "Available streams: " line, without the "(worst)"-style notes.
func ParseAvailableStreams(out string) []string {
	for line := range strings.SplitSeq(out, "\n") {
		rest, ok := strings.CutPrefix(line, "Available streams: ")
		if !ok {
			continue
		}
		return strings.Split(qualityNote.ReplaceAllString(strings.TrimSpace(rest), ""), ", ")
	}
	return nil
}

// LiveFor formats a stream's uptime as "Xh Ym", or "Ym" under an hour.
func LiveFor(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	if d >= time.Hour {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
