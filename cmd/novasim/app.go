package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/novaengine/novasim/internal/behavior"
	"github.com/novaengine/novasim/internal/config"
	"github.com/novaengine/novasim/internal/core/event"
	"github.com/novaengine/novasim/internal/persist"
	"github.com/novaengine/novasim/internal/scripting"
	"github.com/novaengine/novasim/internal/sim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds what every command needs: config, logger and a ready sim.
type app struct {
	cfg *config.Config
	log *zap.Logger
	sim *sim.Sim
	lua *scripting.Engine
}

func newApp(seed uint64, seedSet bool) (*app, error) {
	path := config.ResolvePath(flagConfig)
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case flagConfig == "" && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
	if seedSet {
		cfg.Sim.Seed = seed
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Behavior.ScriptsDir, log.Named("lua"))
	if err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}
	lib := behavior.NewLibrary()
	if cfg.Behavior.TreesFile != "" {
		if err := behavior.LoadLibrary(cfg.Behavior.TreesFile, lib, behavior.Resolvers(behavior.Builtins, engine.Resolver())); err != nil {
			engine.Close()
			return nil, fmt.Errorf("behavior trees: %w", err)
		}
	}
	lib.EnsureDefault()
	for _, id := range cfg.Sim.TreeIDs {
		if !lib.Has(id) {
			engine.Close()
			return nil, fmt.Errorf("sim.tree_ids: unknown tree %q", id)
		}
	}

	bus := event.NewBus()
	subscribeLogs(bus, log)

	s := sim.New(sim.Options{
		Config:  cfg,
		Library: lib,
		Bus:     bus,
		Log:     log.Named("sim"),
		OnReset: func() {
			if err := engine.Reset(); err != nil {
				log.Error("lua reset failed", zap.Error(err))
			}
		},
	})
	log.Info("simulation ready",
		zap.String("config", path),
		zap.Uint64("seed", cfg.Sim.Seed),
		zap.Int("drones", cfg.Sim.Drones),
		zap.Strings("trees", lib.IDs()))
	return &app{cfg: cfg, log: log, sim: s, lua: engine}, nil
}

func (a *app) close() {
	a.lua.Close()
	_ = a.log.Sync()
}

// openArchive returns the configured archive or an error when none is set.
func (a *app) openArchive(ctx context.Context) (persist.Archive, error) {
	ar, err := persist.OpenArchive(ctx, a.cfg.Archive, a.log.Named("archive"))
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if ar == nil {
		return nil, fmt.Errorf("archive: no driver configured")
	}
	return ar, nil
}

func subscribeLogs(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.RecordingStarted) {
		log.Info("recording started", zap.Uint64("seed", e.Seed))
	})
	event.Subscribe(bus, func(e event.RecordingStopped) {
		log.Info("recording stopped", zap.Int("frames", e.Frames), zap.String("path", e.Path))
	})
	event.Subscribe(bus, func(e event.PlaybackStarted) {
		log.Info("playback started", zap.Uint64("seed", e.Seed), zap.Int("frames", e.Frames))
	})
	event.Subscribe(bus, func(e event.PlaybackFinished) {
		if e.Divergences > 0 {
			log.Warn("playback finished", zap.Int("frames", e.Consumed), zap.Int("divergences", e.Divergences))
			return
		}
		log.Info("playback finished", zap.Int("frames", e.Consumed))
	})
	event.Subscribe(bus, func(e event.DivergenceDetected) {
		log.Warn("divergence detected",
			zap.Uint64("step", e.Step),
			zap.String("expected", e.Expected),
			zap.String("actual", e.Actual))
	})
	event.Subscribe(bus, func(e event.TargetAcquired) {
		log.Debug("target acquired", zap.Uint32("entity", uint32(e.Entity)), zap.Uint32("target", uint32(e.Target)))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
