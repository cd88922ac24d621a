// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"syncbin-cli/internal/testutil"
	"syncbin-cli/internal/testutil/fakerunner"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func TestEditor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"VISUAL": "code -w", "EDITOR": "vim"}, "code -w"},
		{map[string]string{"EDITOR": "vim"}, "vim"},
		{nil, DefaultEditor},
	}
	for _, tt := range tests {
		if got := Editor(func(k string) string { return tt.env[k] }); got != tt.want {
			t.Errorf("Editor(%v) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	lookPath := func(name string) (string, error) {
		if name == "syncbin" {
			return "/usr/local/bin/syncbin", nil
		}
		return "", errors.New("not found")
	}
	tests := []struct {
		arg  string
		want string
	}{
		{"~/notes.txt", "/home/fenhl/notes.txt"},
		{"~", "/home/fenhl"},
		{"./a/b.txt", "/work/a/b.txt"},
		{"/etc/hosts", "/etc/hosts"},
		{"syncbin", "/usr/local/bin/syncbin"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.arg, "/home/fenhl", "/work", lookPath)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.arg, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}

	_, err := Resolve("nope", "/home/fenhl", "/work", lookPath)
	if err == nil || err.Error() != "edit: command 'nope' not found" {
		t.Errorf("Resolve(nope) error = %v", err)
	}
}

func TestEdit_Run(t *testing.T) {
	t.Parallel()
	fake := fakerunner.New().WithPath("rust", "/usr/local/bin/rust")
	e := Edit{Runner: fake, Getenv: func(string) string { return "" }, Home: "/h", Cwd: "/w"}
	if _, err := e.Run(t.Context(), "rust"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"nano /usr/local/bin/rust"}, fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	var notFound *CommandNotFoundError
	if _, err := e.Run(t.Context(), "missing"); !errors.As(err, &notFound) {
		t.Errorf("expected CommandNotFoundError, got %v", err)
	}
}

func TestInitJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	obj := filepath.Join(dir, "deep", "nested", "obj.json")
	if err := InitJSON(obj, false); err != nil {
		t.Fatalf("InitJSON: %v", err)
	}
	if got := testutil.MustReadFile(t, obj); got != "{}\n" {
		t.Errorf("object file = %q", got)
	}

	arr := filepath.Join(dir, "arr.json")
	if err := InitJSON(arr, true); err != nil {
		t.Fatalf("InitJSON: %v", err)
	}
	if got := testutil.MustReadFile(t, arr); got != "[]\n" {
		t.Errorf("array file = %q", got)
	}

	if err := InitJSON(arr, false); !errors.Is(err, ErrFileExists) {
		t.Errorf("expected ErrFileExists, got %v", err)
	}
	if got := testutil.MustReadFile(t, arr); got != "[]\n" {
		t.Errorf("existing file was modified: %q", got)
	}
}

func TestParseTube(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want []TubeAction
	}{
		{"bare id then actions", []string{"abc", "-dw"}, []TubeAction{
			{Kind: TubeDownload, Video: "abc"},
			{Kind: TubeWatch, Video: "abc"},
		}},
		{"order matters", []string{"-t", "--video=x", "--download", "-v", "y", "-W"}, []TubeAction{
			{Kind: TubeTimestamp},
			{Kind: TubeDownload, Video: "x"},
			{Kind: TubeWatchInBackground, Video: "y"},
		}},
		{"attached short video", []string{"-lvq1w2", "-D"}, []TubeAction{
			{Kind: TubeList},
			{Kind: TubeDelete, Video: "q1w2"},
		}},
		{"long video with separate value", []string{"--video", "z", "--delete"}, []TubeAction{
			{Kind: TubeDelete, Video: "z"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTube(tt.args)
			if err != nil {
				t.Fatalf("ParseTube: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("actions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTube_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--frobnicate"}, "No such action: --frobnicate"},
		{[]string{"-lx"}, "No such action: x"},
		{[]string{"-v"}, "Syntax error: missing video ID"},
		{[]string{"--video"}, "Syntax error: missing video ID"},
	}
	for _, tt := range tests {
		_, err := ParseTube(tt.args)
		if err == nil || err.Error() != tt.want {
			t.Errorf("ParseTube(%v) error = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestTube_Run(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "gone.mp4"), "video")
	fake := fakerunner.New()
	var stdout, stderr bytes.Buffer
	tube := Tube{
		Runner: fake,
		Dir:    dir,
		Stdout: &stdout,
		Stderr: &stderr,
		Now:    func() time.Time { return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC) },
	}

	actions, err := ParseTube([]string{"-w", "-tV", "abc", "-d", "-W", "gone", "-D"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tube.Run(t.Context(), actions); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"youtube-dl --id https://youtube.com/watch?v=abc",
		"open -- abc.mp4",
	}
	if diff := cmp.Diff(want, fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if got := stdout.String(); got != "[ ** ] 2020-01-02 03:04:05\n[ ** ] tube "+TubeVersion+" by Fenhl\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "[!!!!] No video specified\n" {
		t.Errorf("stderr = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.mp4")); !os.IsNotExist(err) {
		t.Error("gone.mp4 should have been deleted")
	}
}

func TestTube_DownloadNeedsVideo(t *testing.T) {
	t.Parallel()
	fake := fakerunner.New()
	_, err := Tube{Runner: fake, Dir: t.TempDir()}.Run(t.Context(), []TubeAction{{Kind: TubeDownload}, {Kind: TubeList}})
	if !errors.Is(err, ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("later actions must not run, got %v", fake.Lines())
	}
}

func TestPlanConversions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	album := filepath.Join(dir, "album")
	testutil.MustWriteFile(t, filepath.Join(album, "b.m4a"), "")
	testutil.MustWriteFile(t, filepath.Join(album, "a.m4a"), "")
	testutil.MustWriteFile(t, filepath.Join(album, "cover.jpg"), "")

	plan, err := PlanConversions([]string{"x.m4a", "y.m4a", "out/y.mp3", "--delete", album, "x.m4a", "x2.mp3"})
	if err != nil {
		t.Fatalf("PlanConversions: %v", err)
	}
	want := &ConversionPlan{
		Conversions: []Conversion{
			{Src: "x.m4a", Dst: "x2.mp3"},
			{Src: "y.m4a", Dst: "out/y.mp3"},
			{Src: filepath.Join(album, "a.m4a"), Dst: filepath.Join(album, "a.mp3")},
			{Src: filepath.Join(album, "b.m4a"), Dst: filepath.Join(album, "b.mp3")},
		},
		Delete: true,
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanConversions_Errors(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nodir")
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-x"}, "unknown option: -x"},
		{[]string{"a.mp3"}, `missing source path for "a.mp3"`},
		{[]string{"a.wav"}, `unsupported file extension ".wav"`},
		{[]string{missing}, fmt.Sprintf("unknown file type for %q", missing)},
	}
	for _, tt := range tests {
		_, err := PlanConversions(tt.args)
		var planErr *PlanError
		if !errors.As(err, &planErr) || err.Error() != tt.want {
			t.Errorf("PlanConversions(%v) error = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.m4a")
	testutil.MustWriteFile(t, src, "")
	fake := fakerunner.New()
	plan := &ConversionPlan{Conversions: []Conversion{{Src: src, Dst: filepath.Join(dir, "a.mp3")}}, Delete: true}
	if err := Convert(t.Context(), fake, plan, nil); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want := []string{"ffmpeg -loglevel error -i " + src + " -acodec libmp3lame -ab 320k " + filepath.Join(dir, "a.mp3")}
	if diff := cmp.Diff(want, fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should have been deleted")
	}
}

func TestConvert_StopsOnFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.m4a")
	testutil.MustWriteFile(t, src, "")
	fake := fakerunner.New().OnPrefix("ffmpeg", fakerunner.Response{Code: 1})
	plan := &ConversionPlan{
		Conversions: []Conversion{{Src: src, Dst: "a.mp3"}, {Src: "b.m4a", Dst: "b.mp3"}},
		Delete:      true,
	}
	if err := Convert(t.Context(), fake, plan, nil); err == nil {
		t.Fatal("expected error")
	}
	if len(fake.Calls()) != 1 {
		t.Errorf("expected one ffmpeg call, got %v", fake.Lines())
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source must be kept when conversion fails")
	}
}

func TestParseSleepTarget(t *testing.T) {
	t.Parallel()
	now := time.Date(2020, 5, 17, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		args []string
		want time.Time
	}{
		{[]string{"2021-01-02", "03:04:05"}, time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)},
		{[]string{"13:30:00"}, time.Date(2020, 5, 17, 13, 30, 0, 0, time.UTC)},
		{[]string{"12:00:00"}, now},
		{[]string{"7:00:00"}, time.Date(2020, 5, 18, 7, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseSleepTarget(tt.args, now)
		if err != nil {
			t.Fatalf("ParseSleepTarget(%v): %v", tt.args, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSleepTarget(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	for _, bad := range [][]string{{"12:00"}, {"25:00:00"}, {"a:b:c"}, {"2021-13-01", "00:00:00"}, {}} {
		if _, err := ParseSleepTarget(bad, now); err == nil {
			t.Errorf("ParseSleepTarget(%v) should fail", bad)
		}
	}
}

func TestSleepUntil(t *testing.T) {
	t.Parallel()
	clock := testutil.NewFakeClock(time.Time{})

	if err := SleepUntil(t.Context(), clock, clock.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("past target: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- SleepUntil(t.Context(), clock, clock.Now().Add(time.Hour)) }()
	if !clock.BlockUntil(1, 5*time.Second) {
		t.Fatal("SleepUntil never waited")
	}
	select {
	case <-done:
		t.Fatal("returned before the target time")
	default:
	}
	clock.Advance(time.Hour)
	if err := <-done; err != nil {
		t.Fatalf("SleepUntil: %v", err)
	}
}

func TestFormatRemaining(t *testing.T) {
	t.Parallel()
	tests := map[time.Duration]string{
		-time.Second:                   "0s",
		1500 * time.Millisecond:        "2s",
		61 * time.Second:               "1m 1s",
		62*time.Minute + 3*time.Second: "1h 2m 3s",
	}
	for d, want := range tests {
		if got := FormatRemaining(d); got != want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestCountdownModel(t *testing.T) {
	t.Parallel()
	clock := testutil.NewFakeClock(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	until := clock.Now().Add(90 * time.Second)
	m := newCountdownModel(until, clock.Now)

	if got, want := m.View(), "[....] sleeping until 2020-01-01 00:01:30 (1m 30s left)"; got != want {
		t.Errorf("View() = %q, want %q", got, want)
	}

	clock.Advance(30 * time.Second)
	next, cmd := m.Update(countdownTickMsg{})
	if cmd == nil {
		t.Fatal("expected another tick")
	}
	if got := next.View(); !strings.Contains(got, "(1m 0s left)") {
		t.Errorf("View() after tick = %q", got)
	}

	clock.Advance(time.Minute)
	final, cmd := next.Update(countdownTickMsg{})
	if final.View() != "" {
		t.Errorf("finished countdown should render nothing, got %q", final.View())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestInfoBeamer(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	cwd := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(cwd, "clock"))
	nodes := map[string][]string{"hub": {"/opt/ib/run", "hub node"}}
	fake := fakerunner.New()
	ib := InfoBeamer{Runner: fake, Nodes: nodes, Home: home, Cwd: cwd}

	if _, err := ib.Run(t.Context(), "HUB", "--fullscreen"); err != nil {
		t.Fatal(err)
	}
	if _, err := ib.Run(t.Context(), "clock"); err != nil {
		t.Fatal(err)
	}
	testutil.MustWriteFile(t, filepath.Join(home, ".config", "fenhl", "info-beamer"), "#!/bin/sh\n")
	if _, err := ib.Run(t.Context(), "~/slides"); err != nil {
		t.Fatal(err)
	}

	clock, err := filepath.EvalSymlinks(filepath.Join(cwd, "clock"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"/opt/ib/run hub node --fullscreen",
		"sudo -E " + filepath.Join(home, "info-beamer-pi", "info-beamer") + " " + clock,
		filepath.Join(home, ".config", "fenhl", "info-beamer") + " " + filepath.Join(home, "slides"),
	}
	if diff := cmp.Diff(want, fake.Lines()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInfoBeamer_List(t *testing.T) {
	t.Parallel()
	ib := InfoBeamer{Nodes: map[string][]string{
		"zeta":  {"run", "z"},
		"alpha": {"/opt/ib/run", "hub node"},
	}}
	var buf bytes.Buffer
	if err := ib.List(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"NODE", "COMMAND", "/opt/ib/run 'hub node'", "run z"} {
		if !strings.Contains(out, want) {
			t.Errorf("List output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "alpha") > strings.Index(out, "zeta") {
		t.Errorf("nodes should be sorted:\n%s", out)
	}
}

func TestRepr(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"a":      `'a'`,
		"it's":   `"it's"`,
		`'"`:     `'\'"'`,
		"\x03":   `'\x03'`,
		"\r\n\t": `'\r\n\t'`,
		`back\`:  `'back\\'`,
		"é":      `'é'`,
		"\x7f":   `'\x7f'`,
		"\u200b": `'\u200b'`,
	}
	for in, want := range tests {
		if got := Repr(in); got != want {
			t.Errorf("Repr(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestReadChars(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := ReadChars(strings.NewReader("aé\x1bzz"), &buf, 3); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "'a'\r\n'é'\r\n'\\x1b'\r\n"; got != want {
		t.Errorf("ReadChars = %q, want %q", got, want)
	}
	if err := ReadChars(strings.NewReader("a"), &bytes.Buffer{}, 2); err == nil {
		t.Error("expected EOF error")
	}
}

func TestReadRaw_NotTerminal(t *testing.T) {
	t.Parallel()
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := ReadRaw(f, &bytes.Buffer{}, 1); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("expected ErrNotTerminal, got %v", err)
	}
}

func TestCursor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := Up(&buf, 3); err != nil {
		t.Fatal(err)
	}
	if err := ClearEOL(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "\x1b[A\x1b[A\x1b[A\x1b[K"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
