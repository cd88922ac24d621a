// SPDX-License-Identifier: MPL-2.0

package twitch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"syncbin-cli/internal/config"
)

// CacheFile is the cache location relative to the XDG data home.
const CacheFile = "bitbar/plugin-cache/twitch.json"

// deferredLayout is the UTC timestamp format of Cache.Deferred.
const deferredLayout = "2006-01-02 15:04:05"

// DeferDelta is a named deferral period offered in the plugin menu.
type DeferDelta struct {
	Name     string
	Duration time.Duration
}

// DeferDeltas are the menu's deferral choices, in menu order.
var DeferDeltas = []DeferDelta{
	{"20m", 20 * time.Minute},
	{"1h", time.Hour},
	{"4h", 4 * time.Hour},
	{"1d", 24 * time.Hour},
	{"1w", 7 * 24 * time.Hour},
}

// Cache is the plugin's persistent state.
type Cache struct {
	Deferred      string              `json:"deferred,omitempty"`
	HiddenStreams []int64             `json:"hiddenStreams,omitempty"`
	HiddenGames   map[string][]string `json:"hiddenGames,omitempty"`
}

// CachePath returns the writable cache path.
func CachePath() string {
	return config.DataPath(CacheFile)
}

// LookupDelta finds a deferral period by name.
func LookupDelta(name string) (time.Duration, error) {
	for _, d := range DeferDeltas {
		if d.Name == name {
			return d.Duration, nil
		}
	}
	names := make([]string, len(DeferDeltas))
	for i, d := range DeferDeltas {
		names[i] = d.Name
	}
	return 0, fmt.Errorf("unknown deferral %q, expected one of %s", name, strings.Join(names, ", "))
}

// LoadCache reads the cache; a missing file is an empty cache.
func LoadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Cache{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Save writes the cache atomically.
func (c *Cache) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".twitch-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DeferUntil hides the plugin until now+d.
func (c *Cache) DeferUntil(now time.Time, d time.Duration) {
	c.Deferred = now.UTC().Add(d).Format(deferredLayout)
}

// IsDeferred reports whether the deferral is still in effect at now. An
// unparsable timestamp counts as not deferred.
func (c *Cache) IsDeferred(now time.Time) bool {
	if c.Deferred == "" {
		return false
	}
	until, err := time.ParseInLocation(deferredLayout, c.Deferred, time.UTC)
	if err != nil {
		return false
	}
	return !until.Before(now.UTC())
}

// HideStream hides a channel until it goes offline.
func (c *Cache) HideStream(channelID int64) {
	if !slices.Contains(c.HiddenStreams, channelID) {
		c.HiddenStreams = append(c.HiddenStreams, channelID)
	}
}

// HideGame hides a channel while it streams game.
func (c *Cache) HideGame(channelID int64, game string) {
	if c.HiddenGames == nil {
		c.HiddenGames = make(map[string][]string)
	}
	key := strconv.FormatInt(channelID, 10)
	if !slices.Contains(c.HiddenGames[key], game) {
		c.HiddenGames[key] = append(c.HiddenGames[key], game)
	}
}

// IsHidden reports whether s is hidden by stream or by game.
func (c *Cache) IsHidden(s Stream) bool {
	if slices.Contains(c.HiddenStreams, s.Channel.ID) {
		return true
	}
	return slices.Contains(c.HiddenGames[strconv.FormatInt(s.Channel.ID, 10)], s.Game)
}

// PruneHidden forgets hidden streams that are no longer live. It reports
// whether anything changed.
func (c *Cache) PruneHidden(live []Stream) bool {
	kept := slices.DeleteFunc(slices.Clone(c.HiddenStreams), func(id int64) bool {
		return !slices.ContainsFunc(live, func(s Stream) bool { return s.Channel.ID == id })
	})
	if len(kept) == len(c.HiddenStreams) {
		return false
	}
	c.HiddenStreams = kept
	return true
}
