package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gig-director/catalog"
	"gig-director/host"
	"gig-director/midi"
	"gig-director/sim"
	"gig-director/theme"
	"gig-director/tui"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Play a simulated gig in the terminal",
		Long: `Starts a direction session fed by the simulated gig and renders it live.
MIDI control surfaces matching midi.port are picked up as they are plugged in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShow(cmd.Context())
		},
	}
}

func (a *app) runShow(ctx context.Context) error {
	cat, err := a.loadCatalog()
	if err != nil {
		return err
	}
	store := catalog.NewStore(cat)

	setlist, err := a.loadSetlist()
	if err != nil {
		return err
	}
	opts, err := a.gigOptions()
	if err != nil {
		return err
	}
	gig := sim.NewGig(setlist, opts)

	mgr := host.NewManager(ctx, store, a.hostConfig(), a.logger)
	if a.cfg.Catalog.Watch && a.cfg.Catalog.Path != "" {
		mgr.Go(func(ctx context.Context) error {
			return catalog.Watch(ctx, a.cfg.Catalog.Path, store, a.logger)
		})
	}

	var dm *midi.DeviceManager
	if a.cfg.MIDI.Enabled {
		dm = midi.NewDeviceManager(a.cfg.MIDI.Port, a.cfg.MIDI.Mapping, a.logger)
		mgr.Go(dm.Run)
		mgr.Go(func(ctx context.Context) error {
			return midi.Route(ctx, dm.Controls(), gig)
		})
	}

	sess, err := mgr.Start(gig, a.directorOptions())
	if err != nil {
		return errors.Join(err, mgr.Shutdown())
	}

	m := tui.NewModel(sess, gig, store, dm, theme.Default())
	m.Title = "gigdir  " + setlist.Name
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	return errors.Join(runErr, mgr.Shutdown())
}
