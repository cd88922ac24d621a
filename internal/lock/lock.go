// SPDX-License-Identifier: MPL-2.0

// Package lock implements the advisory directory lock that keeps two `rust`
// updates from running at once. The lock is a directory created with mkdir,
// which is atomic on every filesystem syncbin runs on; the holder's pid is
// recorded inside so a crashed holder can be detected and its lock reclaimed.
//
// A stale lock is never removed. Its directory changes owner instead: the
// reclaimer must first create reclaim-<dead pid> exclusively, so of several
// processes that saw the same dead holder exactly one takes the lock over.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultName is the lock directory name used by the Rust updater.
	DefaultName = "syncbin-rs.lock"

	// DefaultPollInterval is how long Acquire sleeps between attempts.
	DefaultPollInterval = time.Second

	pidFileName   = "pid"
	reclaimPrefix = "reclaim-"
)

// ErrLocked is returned by Acquire with SkipIfLocked when another live
// process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// errChanged means the lock was released or replaced while reclaiming it.
var errChanged = errors.New("lock changed during reclaim")

type (
	// Clock is the timer source used while polling.
	Clock interface {
		After(d time.Duration) <-chan time.Time
	}

	// Options configures Acquire.
	Options struct {
		// SkipIfLocked makes Acquire return ErrLocked instead of waiting.
		SkipIfLocked bool
		// PollInterval defaults to DefaultPollInterval.
		PollInterval time.Duration
		// Clock defaults to the system clock.
		Clock Clock
		// OnWait is called once, the first time Acquire has to wait.
		OnWait func(holder int)
	}

	// Lock is a held directory lock.
	Lock struct {
		path string
		once sync.Once
	}

	systemClock struct{}
)

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// DefaultPath returns $TMPDIR/syncbin-rs.lock.
func DefaultPath() string {
	return DefaultPathWith(os.Getenv)
}

// DefaultPathWith resolves the default lock path using getenv so tests don't
// have to touch the process environment.
func DefaultPathWith(getenv func(string) string) string {
	dir := getenv("TMPDIR")
	if dir == "" {
		dir = "/tmp"
	}
	return filepath.Join(dir, DefaultName)
}

// Acquire takes the lock at path, waiting until it is free, the context ends,
// or (with SkipIfLocked) returning ErrLocked immediately.
func Acquire(ctx context.Context, path string, opts Options) (*Lock, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}

	waited := false
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := os.Mkdir(path, 0o755)
		if err == nil {
			if werr := writePID(path); werr != nil {
				_ = os.RemoveAll(path)
				return nil, werr
			}
			slog.Debug("lock acquired", "path", path)
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock directory %s: %w", path, err)
		}

		holder, known := readPID(path)
		if known && !processAlive(holder) {
			l, rerr := reclaim(path, holder)
			switch {
			case errors.Is(rerr, errChanged):
				continue
			case rerr != nil:
				return nil, rerr
			case l != nil:
				return l, nil
			}
		}

		if opts.SkipIfLocked {
			return nil, ErrLocked
		}
		if !waited {
			waited = true
			slog.Debug("waiting for lock", "path", path, "pid", holder)
			if opts.OnWait != nil {
				opts.OnWait(holder)
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-clock.After(interval):
		}
	}
}

// ForceRelease removes the lock at path regardless of who holds it. A missing
// lock is not an error.
func ForceRelease(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("release lock %s: %w", path, err)
	}
	return nil
}

// Holder returns the pid recorded in the lock at path, if any.
func Holder(path string) (int, bool) {
	return readPID(path)
}

// Path returns the lock directory.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release removes the lock. It is safe to call on a nil lock and more than
// once. A lock that was force-released and since taken by another process is
// left alone.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if pid, ok := readPID(l.path); ok && pid != os.Getpid() {
			slog.Warn("lock taken over, not releasing", "path", l.path, "pid", pid)
			return
		}
		if err := os.RemoveAll(l.path); err != nil {
			slog.Warn("lock release failed", "path", l.path, "error", err)
		}
	})
}

// reclaim takes over the lock at path from the dead process stale. Only the
// caller that creates the claim file wins; the others get a nil Lock and see
// the lock as held until the winner's pid is recorded.
func reclaim(path string, stale int) (*Lock, error) {
	claim := filepath.Join(path, reclaimPrefix+strconv.Itoa(stale))
	f, err := os.OpenFile(claim, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	switch {
	case errors.Is(err, os.ErrExist):
		return nil, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, errChanged
	case err != nil:
		return nil, fmt.Errorf("claim stale lock %s: %w", path, err)
	}
	_ = f.Close()

	// The directory may have been released and recreated by a new holder
	// between reading the stale pid and creating the claim.
	if pid, ok := readPID(path); !ok || pid != stale {
		_ = os.Remove(claim)
		return nil, errChanged
	}

	slog.Warn("reclaiming stale lock", "path", path, "pid", stale)
	if err := writePID(path); err != nil {
		return nil, err
	}
	return &Lock{path: path}, nil
}

// writePID records our pid. The file is replaced by rename so readers never
// see a partial write.
func writePID(dir string) error {
	pidPath := filepath.Join(dir, pidFileName)
	tmp, err := os.CreateTemp(dir, pidFileName+".*")
	if err != nil {
		return fmt.Errorf("write lock pid %s: %w", pidPath, err)
	}
	_, werr := tmp.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), pidPath)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write lock pid %s: %w", pidPath, werr)
	}
	return nil
}

// readPID returns false when no pid has been recorded yet, which also covers
// the window between another process's mkdir and its pid write.
func readPID(dir string) (int, bool) {
	data, err := os.ReadFile(filepath.Join(dir, pidFileName))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
