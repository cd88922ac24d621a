// SPDX-License-Identifier: MPL-2.0

package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	// Clock is the time source of sleeptill.
	Clock interface {
		Now() time.Time
		After(d time.Duration) <-chan time.Time
	}

	// SystemClock is the real Clock.
	SystemClock struct{}

	countdownModel struct {
		until     time.Time
		now       func() time.Time
		remaining time.Duration
		done      bool
	}

	countdownTickMsg struct{}
)

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// After implements Clock.
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// ParseSleepTarget reads "<date> <time>" as "YYYY-MM-DD HH:MM:SS", or a lone
// "HH:MM:SS" as the next occurrence of that time: today, or tomorrow when it
// has already passed. Times are in now's location.
func ParseSleepTarget(args []string, now time.Time) (time.Time, error) {
	switch len(args) {
	case 2:
		t, err := time.ParseInLocation(time.DateTime, args[0]+" "+args[1], now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date and time %q: %w", args[0]+" "+args[1], err)
		}
		return t, nil
	case 1:
		parts := strings.Split(args[0], ":")
		if len(parts) != 3 {
			return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM:SS", args[0])
		}
		var hms [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid time %q: %w", args[0], err)
			}
			hms[i] = n
		}
		if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 || hms[0] < 0 || hms[1] < 0 || hms[2] < 0 {
			return time.Time{}, fmt.Errorf("invalid time %q: out of range", args[0])
		}
		y, m, d := now.Date()
		t := time.Date(y, m, d, hms[0], hms[1], hms[2], 0, now.Location())
		if t.Before(now) {
			t = time.Date(y, m, d+1, hms[0], hms[1], hms[2], 0, now.Location())
		}
		return t, nil
	default:
		return time.Time{}, errors.New("expected [<date>] <time>")
	}
}

// SleepUntil blocks until clock reaches until or ctx ends. A time in the past
// returns immediately.
func SleepUntil(ctx context.Context, clock Clock, until time.Time) error {
	d := until.Sub(clock.Now())
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}

// FormatRemaining renders d as "1h 2m 3s", dropping leading zero units.
func FormatRemaining(d time.Duration) string {
	d = max(d, 0).Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Countdown sleeps like SleepUntil while showing the time left on w.
func Countdown(ctx context.Context, w io.Writer, clock Clock, until time.Time) error {
	m := newCountdownModel(until, clock.Now)
	if m.done {
		return nil
	}
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(w), tea.WithInput(nil))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func newCountdownModel(until time.Time, now func() time.Time) countdownModel {
	m := countdownModel{until: until, now: now}
	m.remaining = until.Sub(now())
	m.done = m.remaining <= 0
	return m
}

func (m countdownModel) Init() tea.Cmd {
	return m.tick()
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case countdownTickMsg:
		m.remaining = m.until.Sub(m.now())
		if m.remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m countdownModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("[....] sleeping until %s (%s left)", m.until.Format(time.DateTime), FormatRemaining(m.remaining))
}

func (m countdownModel) tick() tea.Cmd {
	return tea.Tick(min(time.Second, max(m.remaining, time.Millisecond)), func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}
