// SPDX-License-Identifier: MPL-2.0

package twitch

import (
	"path/filepath"
	"testing"
	"time"

	"syncbin-cli/internal/testutil"

	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)

func TestLoadCache_Missing(t *testing.T) {
	t.Parallel()
	c, err := LoadCache(filepath.Join(t.TempDir(), "twitch.json"))
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if diff := cmp.Diff(&Cache{}, c); diff != "" {
		t.Errorf("expected empty cache (-want +got):\n%s", diff)
	}
}

func TestLoadCache_Legacy(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "twitch.json")
	testutil.MustWriteFile(t, path, `{"deferred": "2020-06-01 13:00:00", "hiddenStreams": [1, 2], "hiddenGames": {"3": ["Factorio"]}}`)

	c, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	want := &Cache{Deferred: "2020-06-01 13:00:00", HiddenStreams: []int64{1, 2}, HiddenGames: map[string][]string{"3": {"Factorio"}}}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("cache mismatch (-want +got):\n%s", diff)
	}
	if !c.IsDeferred(now) {
		t.Error("should be deferred until 13:00")
	}
}

func TestCache_SaveCreatesParents(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bitbar", "plugin-cache", "twitch.json")
	c := &Cache{}
	c.HideStream(7)
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if diff := cmp.Diff([]int64{7}, loaded.HiddenStreams); diff != "" {
		t.Errorf("hidden streams mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_Defer(t *testing.T) {
	t.Parallel()
	c := &Cache{}
	if c.IsDeferred(now) {
		t.Fatal("empty cache is not deferred")
	}
	d, err := LookupDelta("1h")
	if err != nil {
		t.Fatal(err)
	}
	c.DeferUntil(now, d)
	if c.Deferred != "2020-06-01 13:00:00" {
		t.Errorf("Deferred = %q", c.Deferred)
	}
	if !c.IsDeferred(now.Add(59 * time.Minute)) {
		t.Error("should still be deferred")
	}
	if c.IsDeferred(now.Add(61 * time.Minute)) {
		t.Error("deferral should have ended")
	}

	c.Deferred = "garbage"
	if c.IsDeferred(now) {
		t.Error("unparsable deferral should be ignored")
	}
}

func TestLookupDelta(t *testing.T) {
	t.Parallel()
	for _, d := range DeferDeltas {
		got, err := LookupDelta(d.Name)
		if err != nil || got != d.Duration {
			t.Errorf("LookupDelta(%q) = (%v, %v)", d.Name, got, err)
		}
	}
	if _, err := LookupDelta("2h"); err == nil {
		t.Error("expected an error for 2h")
	}
}

func TestCache_HideAndPrune(t *testing.T) {
	t.Parallel()
	c := &Cache{}
	c.HideStream(1)
	c.HideStream(1)
	c.HideStream(2)
	c.HideGame(3, "Factorio")
	c.HideGame(3, "Factorio")

	live := []Stream{
		{Game: "Celeste", Channel: Channel{ID: 2}},
		{Game: "Factorio", Channel: Channel{ID: 3}},
		{Game: "Celeste", Channel: Channel{ID: 3}},
	}
	if !c.IsHidden(live[0]) || !c.IsHidden(live[1]) || c.IsHidden(live[2]) {
		t.Errorf("unexpected hidden state for %+v", c)
	}

	if !c.PruneHidden(live) {
		t.Error("stream 1 went offline and should be pruned")
	}
	if diff := cmp.Diff([]int64{2}, c.HiddenStreams); diff != "" {
		t.Errorf("hidden streams mismatch (-want +got):\n%s", diff)
	}
	if c.PruneHidden(live) {
		t.Error("second prune should be a no-op")
	}
	if diff := cmp.Diff(map[string][]string{"3": {"Factorio"}}, c.HiddenGames); diff != "" {
		t.Errorf("hidden games mismatch (-want +got):\n%s", diff)
	}
}

func TestReadTokenFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	testutil.MustWriteFile(t, path, "player=mpv\ntwitch-oauth-token=abc123\n")
	got, err := readTokenFile(path)
	if err != nil || got != "abc123" {
		t.Errorf("readTokenFile = (%q, %v)", got, err)
	}

	testutil.MustWriteFile(t, path, "player=mpv\n")
	if got, _ := readTokenFile(path); got != "" {
		t.Errorf("expected no token, got %q", got)
	}
}
