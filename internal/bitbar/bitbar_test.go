// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"syncbin-cli/internal/config"
	"syncbin-cli/internal/diskspace"
	"syncbin-cli/internal/discord"
	"syncbin-cli/internal/testutil"
	"syncbin-cli/internal/testutil/fakerunner"
	"syncbin-cli/internal/twitch"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
)

var testIcons = Icons{
	Battery:         []byte("battery"),
	BatteryCharging: []byte("charging"),
	Discord:         []byte("discord"),
	Twitch:          []byte("twitch"),
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func render(f func(w *Writer)) []byte {
	var buf bytes.Buffer
	f(NewWriter(&buf))
	return buf.Bytes()
}

func TestWriter(t *testing.T) {
	t.Parallel()
	got := render(func(w *Writer) {
		w.Item("title", P("color", "red"), P("font", "Menlo Bold"))
		w.Sep()
		w.Sub(2, "deep")
		w.Sep(1)
		w.Item(Escape("a|b\nc"))
	})
	want := "title|color=red font=\"Menlo Bold\"\n---\n----deep\n-----\na¦b c\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriter_KeepsFirstError(t *testing.T) {
	t.Parallel()
	w := NewWriter(failingWriter{})
	w.Item("a")
	w.Item("b")
	if w.Err() == nil || w.Err().Error() != "closed" {
		t.Errorf("Err() = %v", w.Err())
	}
}

func TestAction(t *testing.T) {
	t.Parallel()
	want := []Param{{"bash", "/bin/x"}, {"param1", "a"}, {"param2", "b"}}
	if diff := cmp.Diff(want, Action("/bin/x", "a", "b")); diff != "" {
		t.Errorf("Action mismatch (-want +got):\n%s", diff)
	}
}

func TestBattery(t *testing.T) {
	t.Parallel()
	g := newGoldie(t)
	g.Assert(t, "battery-charging", render(func(w *Writer) { Battery(w, BatteryState{Charge: 0.25, Charging: true}, testIcons) }))
	g.Assert(t, "battery-discharging", render(func(w *Writer) { Battery(w, BatteryState{Charge: 0.5}, testIcons) }))

	for _, s := range []BatteryState{{Charge: 0.5, Charging: true}, {Charge: 0.7}, {Charge: 1}} {
		if out := render(func(w *Writer) { Battery(w, s, testIcons) }); len(out) != 0 {
			t.Errorf("Battery(%+v) should print nothing, got %q", s, out)
		}
	}
}

func TestParsePMSet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		out  string
		want BatteryState
	}{
		{"Now drawing from 'Battery Power'\n -InternalBattery-0 (id=4653155)\t85%; discharging; 4:02 remaining present: true\n", BatteryState{Charge: 0.85}},
		{"Now drawing from 'AC Power'\n -InternalBattery-0 (id=1)\t20%; charging; 1:10 remaining present: true\n", BatteryState{Charge: 0.2, Charging: true}},
		{"Now drawing from 'AC Power'\n -InternalBattery-0 (id=1)\t100%; charged; 0:00 remaining present: true\n", BatteryState{Charge: 1}},
	}
	for _, tt := range tests {
		got, err := ParsePMSet(tt.out)
		if err != nil {
			t.Fatalf("ParsePMSet: %v", err)
		}
		if got != tt.want {
			t.Errorf("ParsePMSet() = %+v, want %+v", got, tt.want)
		}
	}
	if _, err := ParsePMSet("Now drawing from 'AC Power'\n"); !errors.Is(err, ErrNoBattery) {
		t.Errorf("expected ErrNoBattery, got %v", err)
	}
}

func TestSysfs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if _, err := (Sysfs{Root: root}).Battery(t.Context()); !errors.Is(err, ErrNoBattery) {
		t.Errorf("expected ErrNoBattery, got %v", err)
	}
	testutil.MustWriteFile(t, filepath.Join(root, "BAT0", "capacity"), "42\n")
	testutil.MustWriteFile(t, filepath.Join(root, "BAT0", "status"), "Charging\n")
	got, err := (Sysfs{Root: root}).Battery(t.Context())
	if err != nil {
		t.Fatalf("Battery: %v", err)
	}
	if got != (BatteryState{Charge: 0.42, Charging: true}) {
		t.Errorf("Battery() = %+v", got)
	}
}

func TestVolume(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state VolumeState
		want  string
	}{
		{VolumeState{Muted: true, Level: 10}, MutedGlyph + "\n"},
		{VolumeState{Level: 5}, LowGlyph + "\n"},
		{VolumeState{Level: 6}, ""},
		{VolumeState{Level: 13}, ""},
		{VolumeState{Level: 14}, HighGlyph + "\n"},
	}
	for _, tt := range tests {
		if got := string(render(func(w *Writer) { Volume(w, tt.state) })); got != tt.want {
			t.Errorf("Volume(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestOSAScript(t *testing.T) {
	t.Parallel()
	fake := fakerunner.New().
		On("osascript -e output muted of (get volume settings)", fakerunner.Response{Stdout: "false\n"}).
		On("osascript -e output volume of (get volume settings)", fakerunner.Response{Stdout: "75\n"})
	got, err := OSAScript{Runner: fake}.Volume(t.Context())
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if got != (VolumeState{Level: 75}) {
		t.Errorf("Volume() = %+v", got)
	}
}

func TestDiskspace(t *testing.T) {
	t.Parallel()
	usages := map[string]diskspace.Usage{
		"/":             {Total: 100 * diskspace.GiB, Available: 3 * diskspace.GiB},
		"/Volumes/Data": {Total: 1000 * diskspace.GiB, Available: 500 * diskspace.GiB},
	}
	prober := diskspace.ProberFunc(func(_ context.Context, path string) (diskspace.Usage, error) {
		u, ok := usages[path]
		if !ok {
			return diskspace.Usage{}, errors.New("no such volume")
		}
		return u, nil
	})

	vols := ProbeVolumes(t.Context(), prober, []string{"/", "/Volumes/Data", "/Volumes/Gone"})
	newGoldie(t).Assert(t, "diskspace-low", render(func(w *Writer) { Diskspace(w, vols) }))

	healthy := ProbeVolumes(t.Context(), prober, []string{"/Volumes/Data"})
	if out := render(func(w *Writer) { Diskspace(w, healthy) }); len(out) != 0 {
		t.Errorf("healthy volumes should print nothing, got %q", out)
	}
}

func discordResults() []discord.Result {
	gefolge := &discord.Guild{Channels: []discord.Channel{
		{Name: "General", Snowflake: "1", Members: []discord.Member{
			{Username: "fenhl", Discriminator: "4813"},
			{Username: "a|b", Discriminator: "1"},
		}},
		{Name: "AFK", Snowflake: "99", Members: []discord.Member{{Username: "idle", Discriminator: "2"}}},
		{Name: "Empty", Snowflake: "3"},
	}}
	return []discord.Result{{Guild: config.Guild{Name: "Gefolge"}, State: gefolge}}
}

func TestDiscord(t *testing.T) {
	t.Parallel()
	cfg := &config.DiscordConfig{IgnoredChannels: []string{"99"}}
	g := newGoldie(t)

	g.Assert(t, "discord-ok", render(func(w *Writer) { Discord(w, cfg, discordResults(), testIcons) }))

	partial := append(discordResults(), discord.Result{
		Guild: config.Guild{Name: "Other"},
		Err:   &discord.StatusError{URL: "http://other.example/api", Status: "502 Bad Gateway"},
	})
	g.Assert(t, "discord-partial", render(func(w *Writer) { Discord(w, cfg, partial, testIcons) }))

	empty := []discord.Result{{Guild: config.Guild{Name: "Quiet"}, State: &discord.Guild{}}}
	if out := render(func(w *Writer) { Discord(w, cfg, empty, testIcons) }); len(out) != 0 {
		t.Errorf("nobody online should print nothing, got %q", out)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "Timeout"},
		{&discord.StatusError{}, "HTTPError"},
		{errors.New("x"), "Error"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type fakeFetcher struct {
	streams *twitch.Streams
	err     error
}

func (f fakeFetcher) FollowedLive(context.Context) (*twitch.Streams, error) {
	return f.streams, f.err
}

var twitchNow = time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)

func newTwitchPlugin(t *testing.T, f StreamsFetcher, fake *fakerunner.Runner) *Twitch {
	t.Helper()
	return &Twitch{
		Fetcher:     f,
		Runner:      fake,
		Token:       "token",
		CachePath:   filepath.Join(t.TempDir(), "twitch.json"),
		Streamlink:  DefaultStreamlink,
		Self:        "/usr/local/bin/syncbin",
		SelfArgs:    []string{"bitbar", "twitch"},
		Icons:       testIcons,
		Now:         func() time.Time { return twitchNow },
		Concurrency: 2,
	}
}

func liveStreams() *twitch.Streams {
	stream := func(id int64, name, display, game, status string, viewers int, since time.Duration) twitch.Stream {
		channelGame, game, _ := strings.Cut(game, "/")
		if game == "" {
			game = channelGame
		}
		return twitch.Stream{
			Game:       game,
			Viewers:    viewers,
			CreatedAt:  twitchNow.Add(-since),
			StreamType: "live",
			Channel: twitch.Channel{
				ID: id, Name: name, DisplayName: display, Status: status,
				URL: "https://www.twitch.tv/" + name, Game: channelGame,
			},
		}
	}
	rerun := stream(3, "c", "C", "Factorio", "old", 1, time.Hour)
	rerun.StreamType = "rerun"
	playlist := stream(4, "d", "D", "Factorio", "vods", 1, time.Hour)
	playlist.IsPlaylist = true
	return &twitch.Streams{Streams: []twitch.Stream{
		stream(1, "fenhl", "Fenhl", "Factorio", "speedrun | any%\nday 2", 12, 90*time.Minute),
		stream(2, "b", "B", "Celeste/Celeste Classic", "chill", 3, 5*time.Minute),
		rerun,
		playlist,
		stream(5, "hidden", "Hidden", "Factorio", "shh", 9, time.Minute),
	}}
}

func TestTwitch_Live(t *testing.T) {
	t.Parallel()
	fake := fakerunner.New().
		On(DefaultStreamlink+" https://www.twitch.tv/fenhl", fakerunner.Response{
			Stdout: "[cli][info] Found matching plugin twitch for URL https://www.twitch.tv/fenhl\nAvailable streams: audio_only, 160p (worst), 360p, 480p, 720p60, 1080p60 (best)\n",
		}).
		On(DefaultStreamlink+" https://www.twitch.tv/b", fakerunner.Response{
			Stdout: "Available streams: audio_only, 160p (worst), 1080p (best)\n",
		})
	p := newTwitchPlugin(t, fakeFetcher{streams: liveStreams()}, fake)
	cache := &twitch.Cache{HiddenStreams: []int64{5, 9}}
	if err := cache.Save(p.CachePath); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.Render(t.Context(), NewWriter(&buf)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	newGoldie(t).Assert(t, "twitch-live", buf.Bytes())

	saved, err := twitch.LoadCache(p.CachePath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{5}, saved.HiddenStreams); diff != "" {
		t.Errorf("offline hidden streams should be pruned (-want +got):\n%s", diff)
	}
	if fake.Ran(DefaultStreamlink + " https://www.twitch.tv/hidden") {
		t.Error("hidden streams should not be probed")
	}
}

func TestTwitch_Unauthenticated(t *testing.T) {
	t.Parallel()
	p := newTwitchPlugin(t, fakeFetcher{}, fakerunner.New())
	p.Token = ""
	var buf bytes.Buffer
	if err := p.Render(t.Context(), NewWriter(&buf)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	newGoldie(t).Assert(t, "twitch-unauthenticated", buf.Bytes())
}

func TestTwitch_Error(t *testing.T) {
	t.Parallel()
	p := newTwitchPlugin(t, fakeFetcher{err: &twitch.StatusError{Code: 401, Status: "401 Unauthorized"}}, fakerunner.New())
	var buf bytes.Buffer
	if err := p.Render(t.Context(), NewWriter(&buf)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	newGoldie(t).Assert(t, "twitch-error", buf.Bytes())
}

func TestTwitch_Deferred(t *testing.T) {
	t.Parallel()
	p := newTwitchPlugin(t, fakeFetcher{err: errors.New("must not fetch")}, fakerunner.New())
	cache := &twitch.Cache{}
	cache.DeferUntil(twitchNow, time.Hour)
	if err := cache.Save(p.CachePath); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := p.Render(t.Context(), NewWriter(&buf)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("deferred plugin should print nothing, got %q", buf.String())
	}
}

func TestParseAvailableStreams(t *testing.T) {
	t.Parallel()
	got := ParseAvailableStreams("noise\nAvailable streams: audio_only, 160p (worst), 720p60 (best)\n")
	if diff := cmp.Diff([]string{"audio_only", "160p", "720p60"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if ParseAvailableStreams("error: No playable streams found\n") != nil {
		t.Error("expected nil without an Available streams line")
	}
}

func TestLiveFor(t *testing.T) {
	t.Parallel()
	tests := map[time.Duration]string{
		0:                          "0m",
		59 * time.Minute:           "59m",
		time.Hour:                  "1h 0m",
		25*time.Hour + time.Minute: "25h 1m",
	}
	for d, want := range tests {
		if got := LiveFor(d); got != want {
			t.Errorf("LiveFor(%v) = %q, want %q", d, got, want)
		}
	}
}
