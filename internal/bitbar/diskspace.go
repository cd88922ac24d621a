// SPDX-License-Identifier: MPL-2.0

package bitbar

import (
	"context"
	"fmt"

	"syncbin-cli/internal/diskspace"

	"golang.org/x/sync/errgroup"
)

// LowDiskThresholds flag a volume with less than 5 GiB or 5% free.
var LowDiskThresholds = diskspace.Thresholds{
	MinSpace:    5 * diskspace.GiB,
	MinFraction: 0.05,
	HasSpace:    true,
	HasFraction: true,
}

// VolumeUsage is the probe result for one volume.
type VolumeUsage struct {
	Volume string
	Usage  diskspace.Usage
	Err    error
}

// ProbeVolumes probes every volume concurrently, keeping the input order.
func ProbeVolumes(ctx context.Context, p diskspace.Prober, volumes []string) []VolumeUsage {
	results := make([]VolumeUsage, len(volumes))
	var g errgroup.Group
	for i, vol := range volumes {
		g.Go(func() error {
			u, err := p.Usage(ctx, vol)
			results[i] = VolumeUsage{Volume: vol, Usage: u, Err: err}
			return nil
		})
	}
	_ = g.Wait() // per-volume errors live in results
	return results
}

// Diskspace lists every volume when any of them is low on space or could not
// be probed, and prints nothing otherwise.
func Diskspace(w *Writer, vols []VolumeUsage) {
	low := false
	for _, v := range vols {
		if v.Err != nil || LowDiskThresholds.Low(v.Usage) {
			low = true
			break
		}
	}
	if !low {
		return
	}

	w.Item("low disk space")
	w.Sep()
	for _, v := range vols {
		if v.Err != nil {
			w.Item(Escape(fmt.Sprintf("%s: error (%v)", v.Volume, v.Err)))
			continue
		}
		w.Item(Escape(fmt.Sprintf("%s: %d%% (%s)", v.Volume, v.Usage.Percent(), diskspace.FormatSpace(v.Usage.Available))))
	}
	w.Sep()
	w.Item("Open DaisyDisk", append(Action("/usr/bin/open", "-a", "DaisyDisk"), P("terminal", "false"))...)
}
