// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"syncbin-cli/internal/playlist"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type countFlags struct {
	all    bool
	number string
}

func (f *countFlags) register(fs *pflag.FlagSet, defaultHelp string) {
	fs.BoolVarP(&f.all, "all", "a", false, "add all items, overrides --number")
	fs.StringVarP(&f.number, "number", "n", "", "add at most this many items, or all (default "+defaultHelp+")")
}

// count resolves --all/--number against the subcommand's default.
func (f *countFlags) count(def int) (int, error) {
	switch {
	case f.all || f.number == "all":
		return playlist.All, nil
	case f.number == "":
		return def, nil
	}
	n, err := strconv.Atoi(f.number)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid --number %q: expected a count or 'all'", f.number)
	}
	return n, nil
}

func newPlaylistCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Show and edit the MPD queue",
		Long: `Show and edit the MPD queue. Without a subcommand the queue is listed.

The server is taken from MPD_HOST and MPD_PORT (default localhost:6600);
add-from resolves paths under MPD_ROOT (default ~/Music).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.DialMPD(playlist.ConfigFromEnv(app.Getenv))
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			return playlist.List(app.stdout, c)
		},
	}

	var from countFlags
	addFrom := &cobra.Command{
		Use:   "add-from <path>",
		Short: "Add a music directory, or its entries from a name prefix on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := from.count(playlist.All)
			if err != nil {
				return err
			}
			cfg := playlist.ConfigFromEnv(app.Getenv)
			c, err := app.DialMPD(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			_, err = playlist.AddFrom(c, cfg.Root, args[0], n)
			return err
		},
	}
	from.register(addFrom.Flags(), "all")

	var random countFlags
	addRandom := &cobra.Command{
		Use:   "add-random <path>",
		Short: "Add random tracks from an MPD directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := random.count(1)
			if err != nil {
				return err
			}
			c, err := app.DialMPD(playlist.ConfigFromEnv(app.Getenv))
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			seed := uint64(app.Clock.Now().UnixNano())
			_, err = playlist.AddRandom(c, args[0], n, rand.New(rand.NewPCG(seed, seed>>1)))
			return err
		},
	}
	random.register(addRandom.Flags(), "1")

	pause := &cobra.Command{
		Use:   "pause-after-current",
		Short: "Stop playback when the current song ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := playlist.ConfigFromEnv(app.Getenv)
			c, err := app.DialMPD(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			w, err := app.WatchMPD(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()
			return playlist.PauseAfterCurrent(cmd.Context(), app.stdout, c, w)
		},
	}

	cmd.AddCommand(addFrom, addRandom, pause)
	return addVersionFlag(cmd)
}
