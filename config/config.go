package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gig-director/midi"
)

// EngineConfig tunes the director
type EngineConfig struct {
	Seed             uint64        `yaml:"seed"`
	LookAroundChance float64       `yaml:"look_around_chance"`
	EntranceDuration time.Duration `yaml:"entrance_duration"`
	ClipInterval     time.Duration `yaml:"clip_interval"`
	SongInterval     time.Duration `yaml:"song_interval"`
	ExitLinger       time.Duration `yaml:"exit_linger"`
}

// CatalogConfig points at a catalog file; empty uses the built-in one
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// ShowConfig describes the simulated show
type ShowConfig struct {
	Setlist       string        `yaml:"setlist"` // YAML setlist; empty generates one
	Songs         int           `yaml:"songs"`
	SongLength    time.Duration `yaml:"song_length"`
	VenueCapacity int           `yaml:"venue_capacity"`
	Role          string        `yaml:"role"`
	Gap           time.Duration `yaml:"gap"`
}

// MIDIConfig selects control surfaces
type MIDIConfig struct {
	Enabled bool         `yaml:"enabled"`
	Port    string       `yaml:"port"` // substring of the input port name
	Mapping midi.Mapping `yaml:"mapping"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	DebugMode  bool            `yaml:"debug_mode"` // false = debug.Log is silent
	Categories map[string]bool `yaml:"categories"`
}

// IsCategoryEnabled returns whether debug logging is enabled for a category.
// Unlisted categories are enabled while debug_mode is on.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Config is the main configuration structure
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Catalog CatalogConfig `yaml:"catalog"`
	Show    ShowConfig    `yaml:"show"`
	MIDI    MIDIConfig    `yaml:"midi"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Seed:             1,
			LookAroundChance: 0.1,
			EntranceDuration: 8 * time.Second,
			ClipInterval:     80 * time.Millisecond,
			SongInterval:     500 * time.Millisecond,
			ExitLinger:       3 * time.Second,
		},
		Show: ShowConfig{
			Songs:         5,
			SongLength:    90 * time.Second,
			VenueCapacity: 800,
			Role:          "vocalist",
			Gap:           5 * time.Second,
		},
		MIDI: MIDIConfig{
			Mapping: midi.DefaultMapping(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks values the engine cannot run with
func (c *Config) Validate() error {
	if c.Engine.LookAroundChance > 1 {
		return fmt.Errorf("engine.look_around_chance %.2f above 1", c.Engine.LookAroundChance)
	}
	if c.Engine.ClipInterval < 0 || c.Engine.SongInterval < 0 {
		return errors.New("engine intervals must not be negative")
	}
	if c.Show.Songs < 0 {
		return fmt.Errorf("show.songs %d is negative", c.Show.Songs)
	}
	if c.Show.VenueCapacity < 0 {
		return fmt.Errorf("show.venue_capacity %d is negative", c.Show.VenueCapacity)
	}
	if c.MIDI.Mapping.Channel < -1 || c.MIDI.Mapping.Channel > 15 {
		return fmt.Errorf("midi.mapping.channel %d outside -1..15", c.MIDI.Mapping.Channel)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gig-director"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path, or returns defaults if it does not exist.
// A .env file next to the config is loaded first, then GIGDIR_*
// environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("GIGDIR_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GIGDIR_SEED: %w", err)
		}
		c.Engine.Seed = seed
	}
	if v := os.Getenv("GIGDIR_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("GIGDIR_SETLIST"); v != "" {
		c.Show.Setlist = v
	}
	if v := os.Getenv("GIGDIR_MIDI_PORT"); v != "" {
		c.MIDI.Port = v
		c.MIDI.Enabled = true
	}
	if v := os.Getenv("GIGDIR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GIGDIR_DEBUG"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GIGDIR_DEBUG: %w", err)
		}
		c.Logging.DebugMode = on
	}
	return nil
}
