// SPDX-License-Identifier: MPL-2.0

package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxPosition is the largest queue position that fits the "[%4d]" column.
const maxPosition = 9999

// All as a count means no limit.
const All = -1

// List prints the queue as "[%4d] file" lines, 1-based. Listing stops with a
// notice at the first position that does not fit the column.
func List(w io.Writer, c Client) error {
	songs, err := c.PlaylistInfo(-1, -1)
	if err != nil {
		return fmt.Errorf("playlistinfo: %w", err)
	}
	for _, song := range songs {
		pos, err := strconv.Atoi(song["Pos"])
		if err != nil {
			fmt.Fprintln(w, "[ !! ]", song["file"])
			continue
		}
		if pos+1 > maxPosition {
			fmt.Fprintln(w, "[ ** ] playlist truncated")
			return nil
		}
		fmt.Fprintf(w, "[%4d] %s\n", pos+1, song["file"])
	}
	return nil
}

// AddFrom adds up to n entries of a music directory, in name order. If
// rel names a directory under root, all its entries are candidates;
// otherwise candidates start at the first entry of its parent whose name
// begins with rel's basename. Failed adds are reported together at the end.
func AddFrom(c Client, root, rel string, n int) ([]string, error) {
	dir := filepath.Join(root, rel)
	found := true
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		found = false
		dir = filepath.Dir(dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	prefix := filepath.Base(rel)
	var added []string
	var errs []error
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			found = true
		}
		if !found {
			continue
		}
		if n != All && len(added)+len(errs) >= n {
			break
		}
		uri, err := filepath.Rel(root, filepath.Join(dir, entry.Name()))
		if err != nil {
			return added, err
		}
		uri = filepath.ToSlash(uri)
		if err := c.Add(uri); err != nil {
			slog.Warn("mpd add failed", "uri", uri, "error", err)
			errs = append(errs, fmt.Errorf("add %s: %w", uri, err))
			continue
		}
		added = append(added, uri)
	}
	return added, errors.Join(errs...)
}

// AddRandom adds up to n randomly chosen entries listed under uri, stopping
// at the first failure. A nil rng uses the global source.
func AddRandom(c Client, uri string, n int, rng *rand.Rand) ([]string, error) {
	infos, err := c.ListInfo(uri)
	if err != nil {
		return nil, fmt.Errorf("lsinfo %s: %w", uri, err)
	}
	var tracks []string
	for _, info := range infos {
		for _, key := range []string{"file", "directory", "playlist"} {
			if v, ok := info[key]; ok {
				tracks = append(tracks, v)
				break
			}
		}
	}

	swap := func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] }
	if rng != nil {
		rng.Shuffle(len(tracks), swap)
	} else {
		rand.Shuffle(len(tracks), swap)
	}

	var added []string
	for _, track := range tracks {
		if n != All && len(added) >= n {
			break
		}
		if err := c.Add(track); err != nil {
			return added, fmt.Errorf("add %s: %w", track, err)
		}
		added = append(added, track)
	}
	return added, nil
}

// PauseAfterCurrent turns on single mode until the player leaves the current
// song, so playback stops at its end. Progress is printed as "[....] song",
// replaced in place by "[ ok ] song".
func PauseAfterCurrent(ctx context.Context, w io.Writer, c Client, watch Watcher) error {
	current, err := c.CurrentSong()
	if err != nil {
		return fmt.Errorf("currentsong: %w", err)
	}
	title := Describe(current)
	fmt.Fprintf(w, "[....] %s", title)

	if err := c.Single(true); err != nil {
		fmt.Fprintln(w)
		return fmt.Errorf("single on: %w", err)
	}
	waitErr := waitForSongChange(ctx, c, watch, current["Id"])
	if err := c.Single(false); err != nil && waitErr == nil {
		waitErr = fmt.Errorf("single off: %w", err)
	}
	if waitErr != nil {
		fmt.Fprintln(w)
		return waitErr
	}
	fmt.Fprintf(w, "\r[ ok ] %s\x1b[K\n", title)
	return nil
}

func waitForSongChange(ctx context.Context, c Client, watch Watcher, songID string) error {
	errs, events := watch.Errors(), watch.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Debug("mpd watcher error", "error", err)
		case _, ok := <-events:
			if !ok {
				return errors.New("mpd watcher closed")
			}
			st, err := c.Status()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			if st["state"] == "stop" || st["songid"] != songID {
				return nil
			}
		}
	}
}

// Describe renders a song like mpc's default format: "artist - title" when
// tagged, else the file.
func Describe(song map[string]string) string {
	artist, title := song["Artist"], song["Title"]
	switch {
	case artist != "" && title != "":
		return artist + " - " + title
	case title != "":
		return title
	default:
		return song["file"]
	}
}
