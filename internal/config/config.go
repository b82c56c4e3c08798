package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/novaengine/novasim/internal/timestep"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// EnvPath names the environment variable consulted for the config path.
const EnvPath = "NOVASIM_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a file.
const DefaultPath = "config/novasim.toml"

type Config struct {
	Sim      SimConfig      `toml:"sim"`
	Time     TimeConfig     `toml:"time"`
	Behavior BehaviorConfig `toml:"behavior"`
	Replay   ReplayConfig   `toml:"replay"`
	Archive  ArchiveConfig  `toml:"archive"`
	Logging  LoggingConfig  `toml:"logging"`
}

type SimConfig struct {
	Seed        uint64   `toml:"seed"`
	Drones      int      `toml:"drones"`
	ArenaExtent float64  `toml:"arena_extent"`
	DroneSpeed  float64  `toml:"drone_speed"`  // units/s at throttle 1
	PlayerSpeed float64  `toml:"player_speed"` // units/s before modifiers
	TreeIDs     []string `toml:"tree_ids"`     // assigned to drones round-robin
}

type TimeConfig struct {
	Mode            string        `toml:"mode"` // "variable", "fixed" or "semifixed"
	FixedHz         float64       `toml:"fixed_hz"`
	TimeScale       float64       `toml:"time_scale"`
	MaxDeltaSeconds float64       `toml:"max_delta_seconds"`
	SmoothingWindow int           `toml:"smoothing_window"`
	FrameInterval   time.Duration `toml:"frame_interval"` // realtime pacing; 0 = unpaced
}

type BehaviorConfig struct {
	TreesFile  string `toml:"trees_file"`  // optional YAML tree library
	ScriptsDir string `toml:"scripts_dir"` // optional Lua maneuver scripts
}

type ReplayConfig struct {
	Version         int  `toml:"version"` // trace version written by the recorder
	VerifyChecksums bool `toml:"verify_checksums"`
}

type ArchiveConfig struct {
	Driver          string        `toml:"driver"` // "", "sqlite" or "postgres"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// ResolvePath picks the config file: the explicit flag value, then the
// NOVASIM_CONFIG environment variable, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Validate checks ranges the simulation depends on.
func (c *Config) Validate() error {
	if _, err := timestep.ParseMode(c.Time.Mode); err != nil {
		return fmt.Errorf("%w: time.mode: %v", ErrInvalid, err)
	}
	switch {
	case c.Time.FixedHz <= 0:
		return fmt.Errorf("%w: time.fixed_hz must be positive", ErrInvalid)
	case c.Time.MaxDeltaSeconds <= 0:
		return fmt.Errorf("%w: time.max_delta_seconds must be positive", ErrInvalid)
	case c.Time.SmoothingWindow <= 0:
		return fmt.Errorf("%w: time.smoothing_window must be positive", ErrInvalid)
	case c.Time.FrameInterval < 0:
		return fmt.Errorf("%w: time.frame_interval must not be negative", ErrInvalid)
	case c.Sim.Drones < 0:
		return fmt.Errorf("%w: sim.drones must not be negative", ErrInvalid)
	case c.Replay.Version < 1 || c.Replay.Version > 2:
		return fmt.Errorf("%w: replay.version must be 1 or 2", ErrInvalid)
	}
	switch c.Archive.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: archive.driver %q", ErrInvalid, c.Archive.Driver)
	}
	if c.Archive.Driver != "" && c.Archive.DSN == "" {
		return fmt.Errorf("%w: archive.dsn is required for driver %q", ErrInvalid, c.Archive.Driver)
	}
	return nil
}

// TimeStep converts the [time] section for the time manager.
func (c *Config) TimeStep() timestep.Config {
	mode, _ := timestep.ParseMode(c.Time.Mode)
	return timestep.Config{
		Mode:            mode,
		FixedHz:         c.Time.FixedHz,
		TimeScale:       c.Time.TimeScale,
		MaxDelta:        c.Time.MaxDeltaSeconds,
		SmoothingWindow: c.Time.SmoothingWindow,
	}
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			Seed:        7,
			Drones:      4,
			ArenaExtent: 50,
			DroneSpeed:  8,
			PlayerSpeed: 6,
			TreeIDs:     []string{"default"},
		},
		Time: TimeConfig{
			Mode:            "semifixed",
			FixedHz:         60,
			TimeScale:       1,
			MaxDeltaSeconds: 0.1,
			SmoothingWindow: 10,
			FrameInterval:   16 * time.Millisecond,
		},
		Replay: ReplayConfig{
			Version:         2,
			VerifyChecksums: true,
		},
		Archive: ArchiveConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
