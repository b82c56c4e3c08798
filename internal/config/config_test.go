package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/novaengine/novasim/internal/timestep"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "novasim.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[sim]
seed = 99
drones = 2

[time]
mode = "fixed"
frame_interval = "5ms"

[archive]
driver = "sqlite"
dsn = "traces.db"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(99), cfg.Sim.Seed)
	require.Equal(t, 2, cfg.Sim.Drones)
	require.Equal(t, 50.0, cfg.Sim.ArenaExtent)
	require.Equal(t, 5*time.Millisecond, cfg.Time.FrameInterval)
	require.Equal(t, 60.0, cfg.Time.FixedHz)
	require.Equal(t, "sqlite", cfg.Archive.Driver)
	require.Equal(t, 30*time.Minute, cfg.Archive.ConnMaxLifetime)

	ts := cfg.TimeStep()
	require.Equal(t, timestep.Fixed, ts.Mode)
	require.Equal(t, 10, ts.SmoothingWindow)
}

func TestZeroTimeScalePassesThrough(t *testing.T) {
	cfg := Default()
	cfg.Time.TimeScale = 0
	require.NoError(t, cfg.Validate())
	require.Zero(t, cfg.TimeStep().TimeScale)
	require.Zero(t, timestep.NewManager(cfg.TimeStep()).TimeScale())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Time.Mode = "warp" }},
		{"fixed hz", func(c *Config) { c.Time.FixedHz = 0 }},
		{"max delta", func(c *Config) { c.Time.MaxDeltaSeconds = -1 }},
		{"window", func(c *Config) { c.Time.SmoothingWindow = 0 }},
		{"interval", func(c *Config) { c.Time.FrameInterval = -time.Second }},
		{"drones", func(c *Config) { c.Sim.Drones = -1 }},
		{"replay version", func(c *Config) { c.Replay.Version = 3 }},
		{"driver", func(c *Config) { c.Archive.Driver = "mysql" }},
		{"dsn", func(c *Config) { c.Archive.Driver = "postgres" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[sim\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[time]\nfixed_hz = -5\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	require.Equal(t, DefaultPath, ResolvePath(""))
	t.Setenv(EnvPath, "/etc/novasim.toml")
	require.Equal(t, "/etc/novasim.toml", ResolvePath(""))
	require.Equal(t, "x.toml", ResolvePath("x.toml"))
}
