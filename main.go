package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gig-director/catalog"
	"gig-director/config"
	"gig-director/debug"
	"gig-director/director"
	"gig-director/host"
	"gig-director/sim"
)

// app carries what PersistentPreRunE prepares for the subcommands
type app struct {
	cfgPath string
	seed    uint64
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gigdir",
		Short: "Procedural concert direction engine",
		Long: `gigdir decides, tick by tick, what a simulated concert shows: which
clip plays for each band member, which stage overlays are live, and where
the gig is in its lifecycle.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	defaultCfg, _ := config.ConfigPath()
	root.PersistentFlags().StringVar(&a.cfgPath, "config", defaultCfg, "Config file")
	root.PersistentFlags().Uint64Var(&a.seed, "seed", 0, "RNG seed (overrides engine.seed)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newRunCmd(a), newSimulateCmd(a), newValidateCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Engine.Seed = a.seed
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.DebugMode = true
	}
	a.cfg = cfg

	// The TUI owns the terminal, so run logs to a file
	if cmd.Name() == "run" {
		if err := debug.Enable(debug.Options{
			Path:       cfg.Logging.File,
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			Categories: cfg.Logging.IsCategoryEnabled,
		}); err != nil {
			return err
		}
		a.logger = debug.L()
		return nil
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Logging.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	a.logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Logging.DebugMode {
		debug.Use(a.logger)
	}
	return nil
}

func (a *app) loadCatalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(a.cfg.Catalog.Path, a.logger)
}

func (a *app) loadSetlist() (sim.Setlist, error) {
	show := a.cfg.Show
	if show.Setlist != "" {
		return sim.LoadSetlist(show.Setlist)
	}
	sl := sim.GenerateSetlist(a.cfg.Engine.Seed, show.Songs, show.SongLength)
	return sl, sl.Validate()
}

func (a *app) gigOptions() (sim.Options, error) {
	role := catalog.Role(a.cfg.Show.Role)
	if !role.Performer() {
		return sim.Options{}, fmt.Errorf("show.role %q is not a band member", role)
	}
	opts := sim.DefaultOptions()
	opts.Seed = a.cfg.Engine.Seed
	opts.VenueCapacity = a.cfg.Show.VenueCapacity
	opts.Role = role
	if a.cfg.Show.Gap > 0 {
		opts.Gap = a.cfg.Show.Gap
	}
	return opts, nil
}

func (a *app) directorOptions() director.Options {
	lookAround := a.cfg.Engine.LookAroundChance
	if lookAround == 0 {
		lookAround = -1 // explicit zero in config disables look-arounds
	}
	return director.Options{
		Seed:             a.cfg.Engine.Seed,
		EntranceDuration: a.cfg.Engine.EntranceDuration,
		LookAroundChance: lookAround,
	}
}

func (a *app) hostConfig() host.Config {
	return host.Config{
		ClipInterval: a.cfg.Engine.ClipInterval,
		SongInterval: a.cfg.Engine.SongInterval,
		ExitLinger:   a.cfg.Engine.ExitLinger,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
