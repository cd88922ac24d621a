// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"syncbin-cli/internal/runner"
)

const (
	// lowChargingThreshold and lowDischargingThreshold are the charge levels
	// below which the battery icon is shown.
	lowChargingThreshold    = 0.3
	lowDischargingThreshold = 0.7

	// SysPowerSupply is the Linux sysfs power supply class directory.
	SysPowerSupply = "/sys/class/power_supply"
)

// ErrNoBattery means the machine reports no battery.
var ErrNoBattery = errors.New("no battery")

var pmsetLine = regexp.MustCompile(`(\d+)%;\s*([^;]+);`)

type (
	// BatteryState is the charge level in [0, 1] and the charger state.
	BatteryState struct {
		Charge   float64
		Charging bool
	}

	// BatterySource reads the battery state.
	BatterySource interface {
		Battery(ctx context.Context) (BatteryState, error)
	}

	// PMSet reads `pmset -g batt` on macOS.
	PMSet struct {
		Runner runner.Runner
	}

	// Sysfs reads BAT* entries under Root on Linux.
	Sysfs struct {
		Root string
	}
)

// NewBatterySource picks the source for the running OS.
func NewBatterySource(r runner.Runner) BatterySource {
	if runtime.GOOS == "darwin" {
		return PMSet{Runner: r}
	}
	return Sysfs{Root: SysPowerSupply}
}

// Battery implements BatterySource.
func (p PMSet) Battery(ctx context.Context) (BatteryState, error) {
	out, err := p.Runner.Output(ctx, runner.Cmd{Name: "pmset", Args: []string{"-g", "batt"}})
	if err != nil {
		return BatteryState{}, err
	}
	return ParsePMSet(string(out))
}

// ParsePMSet parses `pmset -g batt` output.
func ParsePMSet(out string) (BatteryState, error) {
	m := pmsetLine.FindStringSubmatch(out)
	if m == nil {
		return BatteryState{}, ErrNoBattery
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return BatteryState{}, err
	}
	state := strings.TrimSpace(m[2])
	return BatteryState{
		Charge:   float64(pct) / 100,
		Charging: state == "charging" || state == "finishing charge",
	}, nil
}

// Battery implements BatterySource.
func (s Sysfs) Battery(_ context.Context) (BatteryState, error) {
	dirs, err := filepath.Glob(filepath.Join(s.Root, "BAT*"))
	if err != nil {
		return BatteryState{}, err
	}
	if len(dirs) == 0 {
		return BatteryState{}, ErrNoBattery
	}
	capacity, err := os.ReadFile(filepath.Join(dirs[0], "capacity"))
	if err != nil {
		return BatteryState{}, err
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(capacity)))
	if err != nil {
		return BatteryState{}, fmt.Errorf("%s: %w", dirs[0], err)
	}
	status, err := os.ReadFile(filepath.Join(dirs[0], "status"))
	if err != nil {
		return BatteryState{}, err
	}
	return BatteryState{
		Charge:   float64(pct) / 100,
		Charging: strings.TrimSpace(string(status)) == "Charging",
	}, nil
}

// Battery shows the charge while charging below 30%, or while discharging
// below 70%, and nothing otherwise.
func Battery(w *Writer, s BatteryState, icons Icons) {
	pct := strconv.Itoa(int(s.Charge*100)) + "%"
	switch {
	case s.Charging && s.Charge < lowChargingThreshold:
		w.Item(pct, TemplateImage(icons.BatteryCharging))
		w.Sep()
		w.Item("charging")
	case !s.Charging && s.Charge < lowDischargingThreshold:
		w.Item(pct, TemplateImage(icons.Battery))
		w.Sep()
		w.Item("not charging")
	}
}
