package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gig-director/catalog"
	"gig-director/director"
	"gig-director/sim"
)

// simulateEpoch anchors the simulated clock so runs are reproducible
var simulateEpoch = time.Date(2000, 1, 1, 20, 0, 0, 0, time.UTC)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		step    time.Duration
		songs   int
		length  time.Duration
		allClip bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a whole gig headless on a simulated clock",
		Long: `Plays the configured (or generated) setlist against a fresh director
without waiting on the wall clock and prints phase changes, clip cuts and
overlay changes. The same seed always prints the same gig.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("songs") {
				a.cfg.Show.Songs = songs
			}
			if cmd.Flags().Changed("song-length") {
				a.cfg.Show.SongLength = length
			}
			if step <= 0 {
				return fmt.Errorf("--step must be positive")
			}
			return a.simulate(cmd.OutOrStdout(), step, allClip)
		},
	}
	cmd.Flags().DurationVar(&step, "step", 100*time.Millisecond, "Simulated tick length")
	cmd.Flags().IntVar(&songs, "songs", 0, "Songs in a generated setlist (overrides show.songs)")
	cmd.Flags().DurationVar(&length, "song-length", 0, "Length of generated songs (overrides show.song_length)")
	cmd.Flags().BoolVar(&allClip, "all-roles", false, "Print clip cuts for every performer, not just the POV")
	return cmd
}

func (a *app) simulate(w io.Writer, step time.Duration, allRoles bool) error {
	cat, err := a.loadCatalog()
	if err != nil {
		return err
	}
	setlist, err := a.loadSetlist()
	if err != nil {
		return err
	}
	opts, err := a.gigOptions()
	if err != nil {
		return err
	}
	gig := sim.NewGig(setlist, opts)

	fmt.Fprintf(w, "%s: %d songs, seed %d\n", setlist.Name, len(setlist.Songs), a.cfg.Engine.Seed)

	var (
		prev     director.Output
		started  bool
		clips    = make(map[catalog.Role]string)
		overlays []string
	)
	final := sim.Play(cat, gig, simulateEpoch, step, a.directorOptions(), func(f sim.Frame) bool {
		out := f.Output
		stamp := formatStamp(f.At)

		if !started || out.Phase != prev.Phase {
			fmt.Fprintf(w, "%s phase %-13s song %d/%d%s\n", stamp, out.Phase, min(out.SongIndex+1, out.TotalSongs), out.TotalSongs, effects(out.Effects))
		} else if len(out.Effects) > 0 {
			fmt.Fprintf(w, "%s %s\n", stamp, strings.TrimSpace(effects(out.Effects)))
		}
		for _, r := range catalog.PerformerRoles {
			clip, ok := out.Clips[r]
			if !ok || clip.ID == "" || clips[r] == clip.ID {
				continue
			}
			clips[r] = clip.ID
			if allRoles || r == out.Current.Role {
				fmt.Fprintf(w, "%s   %-11s %-24s %-10s %.2f %s\n", stamp, r, clip.ID, clip.Type, clip.EnergyLevel, out.Section)
			}
		}
		if !slices.Equal(overlays, out.Overlays) {
			overlays = slices.Clone(out.Overlays)
			fmt.Fprintf(w, "%s   overlays    %s\n", stamp, strings.Join(overlays, " "))
		}
		prev, started = out, true
		return true
	})

	fmt.Fprintf(w, "ended in %s after %s\n", final.Phase, formatStamp(gig.Elapsed()))
	return nil
}

func effects(fx []director.Effect) string {
	if len(fx) == 0 {
		return ""
	}
	names := make([]string, len(fx))
	for i, e := range fx {
		names[i] = string(e)
	}
	return "  [" + strings.Join(names, " ") + "]"
}

func formatStamp(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	return fmt.Sprintf("%02d:%04.1f", int(d.Minutes()), (d % time.Minute).Seconds())
}
