// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"syncbin-cli/internal/diskspace"
	"syncbin-cli/pkg/types"

	"github.com/spf13/cobra"
)

type diskspaceFlags struct {
	verbose    bool
	quiet      bool
	bytes      bool
	debug      bool
	zsh        bool
	minPercent int
	minSpace   uint64
	path       string
}

func newDiskspaceCommand(app *App) *cobra.Command {
	var f diskspaceFlags
	cmd := &cobra.Command{
		Use:   "diskspace",
		Short: "Show available space on the main disk",
		Long: `Show available space on the main disk.

With --min-percent or --min-space, nothing is printed unless available
space falls below a limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := diskspaceThresholds(f, cmd.Flags().Changed("min-percent"), cmd.Flags().Changed("min-space"))

			u, err := app.Prober.Usage(cmd.Context(), f.path)
			if err != nil {
				if f.debug || f.verbose {
					return &ExitError{Code: types.ExitFailure, Err: err}
				}
				fmt.Fprintln(app.stdout, "[disk: error]")
				return &ExitError{Code: types.ExitFailure}
			}
			return exitWith(diskspace.Report(app.stdout, u, t, diskspace.ReportOptions{
				Bytes:   f.bytes,
				Quiet:   f.quiet,
				Verbose: f.verbose,
			}))
		},
	}

	fl := cmd.Flags()
	fl.BoolVarP(&f.verbose, "verbose", "V", false, "produce more detailed output, implies --debug")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "print nothing, exit 1 if space is low")
	fl.BoolVar(&f.bytes, "bytes", false, "print the raw number of bytes")
	fl.BoolVar(&f.debug, "debug", false, "print the error instead of a generic message")
	fl.BoolVar(&f.zsh, "zsh", false, "zsh right prompt defaults, same as --min-percent=1 --min-space=1")
	fl.IntVar(&f.minPercent, "min-percent", 0, "print nothing if at least this percentage is available")
	fl.Uint64Var(&f.minSpace, "min-space", 0, "print nothing if at least this many GB are available")
	fl.StringVar(&f.path, "path", "/", "filesystem to check")
	return addVersionFlag(cmd)
}

// diskspaceThresholds applies explicit limits first, then the --zsh
// defaults for whichever limit was not given.
func diskspaceThresholds(f diskspaceFlags, percentSet, spaceSet bool) diskspace.Thresholds {
	var t diskspace.Thresholds
	switch {
	case percentSet:
		t.MinFraction, t.HasFraction = float64(f.minPercent)/100, true
	case f.zsh:
		t.MinFraction, t.HasFraction = 0.01, true
	}
	switch {
	case spaceSet:
		t.MinSpace, t.HasSpace = f.minSpace*diskspace.OneGig, true
	case f.zsh:
		t.MinSpace, t.HasSpace = diskspace.OneGig, true
	}
	return t
}
