// SPDX-License-Identifier: MPL-2.0

package playlist

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"syncbin-cli/internal/testutil"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/google/go-cmp/cmp"
)

type fakeClient struct {
	mu       sync.Mutex
	queue    []mpd.Attrs
	listing  map[string][]mpd.Attrs
	current  mpd.Attrs
	statuses []mpd.Attrs
	failAdd  map[string]bool
	added    []string
	single   []bool
}

func (f *fakeClient) PlaylistInfo(start, end int) ([]mpd.Attrs, error) {
	return f.queue, nil
}

func (f *fakeClient) ListInfo(uri string) ([]mpd.Attrs, error) {
	attrs, ok := f.listing[uri]
	if !ok {
		return nil, errors.New("No such directory")
	}
	return attrs, nil
}

func (f *fakeClient) Add(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd[uri] {
		return errors.New("add failed")
	}
	f.added = append(f.added, uri)
	return nil
}

func (f *fakeClient) CurrentSong() (mpd.Attrs, error) { return f.current, nil }

func (f *fakeClient) Status() (mpd.Attrs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return st, nil
}

func (f *fakeClient) Single(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.single = append(f.single, on)
	return nil
}

func (f *fakeClient) Close() error { return nil }

type fakeWatcher struct {
	events chan string
	errs   chan error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{events: make(chan string, 8), errs: make(chan error, 8)}
}

func (w *fakeWatcher) Events() <-chan string { return w.events }
func (w *fakeWatcher) Errors() <-chan error  { return w.errs }
func (w *fakeWatcher) Close() error          { return nil }

func TestList(t *testing.T) {
	t.Parallel()
	c := &fakeClient{queue: []mpd.Attrs{
		{"Pos": "0", "file": "Artist/Album/01 Intro.flac"},
		{"Pos": "1", "file": "Artist/Album/02 Song.flac"},
	}}
	var out bytes.Buffer
	if err := List(&out, c); err != nil {
		t.Fatalf("List: %v", err)
	}
	want := "[   1] Artist/Album/01 Intro.flac\n[   2] Artist/Album/02 Song.flac\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestList_Truncated(t *testing.T) {
	t.Parallel()
	c := &fakeClient{}
	for pos := 9997; pos < 10002; pos++ {
		c.queue = append(c.queue, mpd.Attrs{"Pos": strconv.Itoa(pos), "file": "f" + strconv.Itoa(pos)})
	}
	var out bytes.Buffer
	if err := List(&out, c); err != nil {
		t.Fatalf("List: %v", err)
	}
	want := "[9998] f9997\n[9999] f9998\n[ ** ] playlist truncated\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func musicRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"01 One.mp3", "02 Two.mp3", "03 Three.mp3", "04 Four.mp3"} {
		testutil.MustWriteFile(t, filepath.Join(root, "Artist", "Album", f), "")
	}
	return root
}

func TestAddFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rel  string
		n    int
		want []string
	}{
		{"directory, all", "Artist/Album", All, []string{"Artist/Album/01 One.mp3", "Artist/Album/02 Two.mp3", "Artist/Album/03 Three.mp3", "Artist/Album/04 Four.mp3"}},
		{"directory, limited", "Artist/Album", 2, []string{"Artist/Album/01 One.mp3", "Artist/Album/02 Two.mp3"}},
		{"start at prefix", "Artist/Album/03", All, []string{"Artist/Album/03 Three.mp3", "Artist/Album/04 Four.mp3"}},
		{"start at prefix, one", "Artist/Album/02", 1, []string{"Artist/Album/02 Two.mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &fakeClient{}
			added, err := AddFrom(c, musicRoot(t), tt.rel, tt.n)
			if err != nil {
				t.Fatalf("AddFrom: %v", err)
			}
			if diff := cmp.Diff(tt.want, added); diff != "" {
				t.Errorf("added mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, c.added); diff != "" {
				t.Errorf("client mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddFrom_ContinuesPastFailures(t *testing.T) {
	t.Parallel()
	c := &fakeClient{failAdd: map[string]bool{"Artist/Album/02 Two.mp3": true}}
	added, err := AddFrom(c, musicRoot(t), "Artist/Album", All)
	if err == nil {
		t.Fatal("expected the failed add to be reported")
	}
	if len(added) != 3 {
		t.Errorf("expected the other 3 tracks to be added, got %v", added)
	}
}

func TestAddRandom(t *testing.T) {
	t.Parallel()
	listing := []mpd.Attrs{
		{"file": "Album/a.mp3"}, {"file": "Album/b.mp3"}, {"directory": "Album/Bonus"}, {"file": "Album/c.mp3"},
	}

	t.Run("one", func(t *testing.T) {
		t.Parallel()
		c := &fakeClient{listing: map[string][]mpd.Attrs{"Album": listing}}
		added, err := AddRandom(c, "Album", 1, rand.New(rand.NewPCG(1, 2)))
		if err != nil {
			t.Fatalf("AddRandom: %v", err)
		}
		if len(added) != 1 {
			t.Errorf("expected one track, got %v", added)
		}
	})

	t.Run("all is a permutation", func(t *testing.T) {
		t.Parallel()
		c := &fakeClient{listing: map[string][]mpd.Attrs{"Album": listing}}
		added, err := AddRandom(c, "Album", All, rand.New(rand.NewPCG(3, 4)))
		if err != nil {
			t.Fatalf("AddRandom: %v", err)
		}
		want := map[string]bool{"Album/a.mp3": true, "Album/b.mp3": true, "Album/Bonus": true, "Album/c.mp3": true}
		if len(added) != len(want) {
			t.Fatalf("expected %d entries, got %v", len(want), added)
		}
		for _, a := range added {
			if !want[a] {
				t.Errorf("unexpected entry %q", a)
			}
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		t.Parallel()
		fail := map[string]bool{}
		for _, a := range listing {
			for _, v := range a {
				fail[v] = true
			}
		}
		c := &fakeClient{listing: map[string][]mpd.Attrs{"Album": listing}, failAdd: fail}
		added, err := AddRandom(c, "Album", All, nil)
		if err == nil || len(added) != 0 {
			t.Errorf("AddRandom = (%v, %v), want first failure", added, err)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()
		if _, err := AddRandom(&fakeClient{}, "Nope", 1, nil); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestPauseAfterCurrent(t *testing.T) {
	t.Parallel()
	c := &fakeClient{
		current: mpd.Attrs{"Id": "7", "Artist": "Daft Punk", "Title": "Veridis Quo", "file": "dp/vq.flac"},
		statuses: []mpd.Attrs{
			{"state": "play", "songid": "7"},
			{"state": "stop", "songid": "8"},
		},
	}
	w := newFakeWatcher()
	w.errs <- errors.New("transient")
	w.events <- "player"
	w.events <- "player"

	var out bytes.Buffer
	if err := PauseAfterCurrent(t.Context(), &out, c, w); err != nil {
		t.Fatalf("PauseAfterCurrent: %v", err)
	}
	want := "[....] Daft Punk - Veridis Quo\r[ ok ] Daft Punk - Veridis Quo\x1b[K\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false}, c.single); diff != "" {
		t.Errorf("single mode mismatch (-want +got):\n%s", diff)
	}
}

func TestPauseAfterCurrent_CancelRestoresSingle(t *testing.T) {
	t.Parallel()
	c := &fakeClient{current: mpd.Attrs{"Id": "1", "file": "x.mp3"}}
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := PauseAfterCurrent(ctx, &out, c, newFakeWatcher())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if diff := cmp.Diff([]bool{true, false}, c.single); diff != "" {
		t.Errorf("single mode mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	tests := []struct {
		song map[string]string
		want string
	}{
		{map[string]string{"Artist": "A", "Title": "T", "file": "f"}, "A - T"},
		{map[string]string{"Title": "T", "file": "f"}, "T"},
		{map[string]string{"file": "dir/f.mp3"}, "dir/f.mp3"},
	}
	for _, tt := range tests {
		if got := Describe(tt.song); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.song, got, tt.want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{"defaults", map[string]string{"MPD_ROOT": "/music"}, Config{Network: "tcp", Addr: "localhost:6600", Root: "/music"}},
		{"host and port", map[string]string{"MPD_HOST": "media", "MPD_PORT": "6601", "MPD_ROOT": "/m"}, Config{Network: "tcp", Addr: "media:6601", Root: "/m"}},
		{"password", map[string]string{"MPD_HOST": "secret@media", "MPD_ROOT": "/m"}, Config{Network: "tcp", Addr: "media:6600", Password: "secret", Root: "/m"}},
		{"socket", map[string]string{"MPD_HOST": "/run/mpd/socket", "MPD_ROOT": "/m"}, Config{Network: "unix", Addr: "/run/mpd/socket", Root: "/m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ConfigFromEnv(func(k string) string { return tt.env[k] })
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConfigFromEnv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
