// Package sim assembles the deterministic simulation: world, rng, behavior
// ticker, replay recorder and player, and the ordered system pipeline.
package sim

import (
	"context"
	"time"

	"github.com/novaengine/novasim/internal/behavior"
	"github.com/novaengine/novasim/internal/config"
	"github.com/novaengine/novasim/internal/core/event"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/replay"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/novaengine/novasim/internal/system"
	"github.com/novaengine/novasim/internal/timestep"
	"github.com/novaengine/novasim/internal/world"
	"go.uber.org/zap"
)

// Options configures a Sim. Only Config is required.
type Options struct {
	Config  *config.Config
	Library *behavior.Library // nil: default tree only
	Bus     *event.Bus        // nil: a private bus
	Log     *zap.Logger
	// NewInput builds the live input source after every reset. nil uses
	// scripted input from the "input" named stream.
	NewInput func(*rng.Service) input.Source
	Clock    timestep.Clock // nil: wall clock
	// OnReset runs at the start of every reset, before the scene is rebuilt.
	OnReset func()
}

// Sim owns one simulation run. All methods must be called from the sim
// thread.
type Sim struct {
	cfg      *config.Config
	log      *zap.Logger
	bus      *event.Bus
	lib      *behavior.Library
	newInput func(*rng.Service) input.Source
	onReset  func()
	time     *timestep.Manager

	recorder *replay.Recorder
	player   *replay.Player

	// Rebuilt by Reset.
	rng     *rng.Service
	world   *world.State
	scene   world.Scene
	ticker  *behavior.Ticker
	capture *system.CaptureSystem
	runner  *coresys.Runner
	source  input.Source
	extra   []coresys.System

	step      system.Step
	elapsed   float64
	steps     uint64
	replaying bool
}

// New builds a sim and resets it to cfg.Sim.Seed.
func New(opts Options) *Sim {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Sim{
		cfg:      cfg,
		log:      log,
		bus:      opts.Bus,
		lib:      opts.Library,
		newInput: opts.NewInput,
		onReset:  opts.OnReset,
		recorder: replay.NewRecorder(log.Named("recorder")),
		player:   replay.NewPlayer(log.Named("player")),
	}
	if s.bus == nil {
		s.bus = event.NewBus()
	}
	if s.lib == nil {
		s.lib = behavior.NewLibrary()
	}
	if s.newInput == nil {
		s.newInput = func(r *rng.Service) input.Source { return input.NewScripted(r) }
	}
	tsOpts := []timestep.Option{timestep.WithLogger(log.Named("time"))}
	if opts.Clock != nil {
		tsOpts = append(tsOpts, timestep.WithClock(opts.Clock))
	}
	s.time = timestep.NewManager(cfg.TimeStep(), tsOpts...)
	s.recorder.SetVersion(cfg.Replay.Version)
	s.Reset(cfg.Sim.Seed)
	return s
}

// Reset discards the world and rebuilds the scene from seed. The recorder
// and the player's loaded frames survive.
func (s *Sim) Reset(seed uint64) {
	if s.onReset != nil {
		s.onReset()
	}
	s.rng = rng.New(seed)
	s.world = world.NewState()
	s.scene = s.world.Spawn(s.rng, world.SpawnConfig{
		Drones:      s.cfg.Sim.Drones,
		Extent:      s.cfg.Sim.ArenaExtent,
		PlayerSpeed: s.cfg.Sim.PlayerSpeed,
		TreeIDs:     s.cfg.Sim.TreeIDs,
	})
	s.source = s.newInput(s.rng)
	s.ticker = behavior.NewTicker(s.lib, s.bus, s.log.Named("behavior"))
	s.capture = system.NewCaptureSystem(s.world, &s.step, s.rng, s.recorder, s.player, s.bus, s.log.Named("capture"))
	s.capture.SetVerify(s.cfg.Replay.VerifyChecksums)

	s.runner = coresys.NewRunner()
	s.runner.Register(system.NewEventDispatchSystem(s.bus))
	s.runner.Register(system.NewInputSystem(s.world, &s.step))
	s.runner.Register(s.capture)
	s.runner.Register(system.NewBehaviorSystem(s.world, s.ticker, s.rng))
	s.runner.Register(system.NewNavigationSystem(s.world, s.cfg.Sim.DroneSpeed))
	s.runner.Register(system.NewPhysicsSystem(s.world))
	s.runner.Register(system.NewCleanupSystem(s.world, s.log.Named("cleanup")))
	for _, sys := range s.extra {
		s.runner.Register(sys)
	}

	s.step = system.Step{}
	s.elapsed = 0
	s.steps = 0
	s.log.Debug("sim reset", zap.Uint64("seed", seed), zap.Int("entities", s.world.Len()))
}

// Register adds a system to the pipeline. It is kept across resets and runs
// after the built-in systems of the same phase.
func (s *Sim) Register(sys coresys.System) {
	s.extra = append(s.extra, sys)
	s.runner.Register(sys)
}

// Step advances the simulation by one update. While replaying, the next
// frame supplies the step's time and input and dt is ignored.
func (s *Sim) Step(dt float64) {
	var frame *replay.Frame
	if s.replaying {
		if f, ok := s.player.Next(); ok {
			frame = f
		} else {
			s.finishPlayback()
		}
	}

	var t float64
	if frame != nil {
		t = frame.T
		s.step.Input = frame.Input
	} else {
		t = s.elapsed + dt
		s.step.Input = s.source.Gather(s.steps)
	}
	// Record and replay both integrate over t - elapsed so the step length
	// is the same float in both runs.
	dt = t - s.elapsed

	s.step.Index = s.steps
	s.step.T = t
	s.step.Frame = frame
	s.runner.Tick(dt)

	s.elapsed = t
	s.steps++
}

// RunSteps runs n fixed-length steps without pacing.
func (s *Sim) RunSteps(ctx context.Context, n int) error {
	dt := s.time.State().FixedDelta
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step(dt)
	}
	return nil
}

// Run drives the sim from the frame clock until shouldContinue reports
// false or ctx ends. shouldContinue is polled once per frame, before the
// frame's tick program, so a frame that starts always runs all of its
// updates. Each frame then waits for the configured frame interval.
func (s *Sim) Run(ctx context.Context, shouldContinue func() bool) error {
	return s.run(ctx, shouldContinue, 0)
}

// RunPaced drives the sim from the frame clock like Run and stops once n
// more steps have run, cutting the last frame's tick program short if it
// owes more than that.
func (s *Sim) RunPaced(ctx context.Context, n uint64) error {
	if n == 0 {
		return ctx.Err()
	}
	return s.run(ctx, nil, s.steps+n)
}

// run is the frame loop; a non-zero limit is an absolute step count.
func (s *Sim) run(ctx context.Context, shouldContinue func() bool, limit uint64) error {
	var tick <-chan time.Time
	if iv := s.cfg.Time.FrameInterval; iv > 0 {
		ticker := time.NewTicker(iv)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if shouldContinue != nil && !shouldContinue() {
			return nil
		}

		s.time.BeginFrame()
		st := s.time.Update()
		for i := 0; i < st.UpdateCount; i++ {
			s.Step(s.time.StepDelta())
			if limit > 0 && s.steps >= limit {
				return nil
			}
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
}

func (s *Sim) Time() *timestep.Manager { return s.time }
func (s *Sim) World() *world.State     { return s.world }
func (s *Sim) Scene() world.Scene      { return s.scene }
func (s *Sim) RNG() *rng.Service       { return s.rng }
func (s *Sim) Bus() *event.Bus         { return s.bus }
func (s *Sim) Library() *behavior.Library {
	return s.lib
}

// Steps returns the number of steps since the last reset.
func (s *Sim) Steps() uint64 { return s.steps }

// Elapsed returns the simulation time since the last reset.
func (s *Sim) Elapsed() float64 { return s.elapsed }

// BehaviorStats returns the stats of the last behavior pass.
func (s *Sim) BehaviorStats() behavior.Stats { return s.ticker.LastStats() }

// Divergences returns the checksum mismatches seen in the current playback.
func (s *Sim) Divergences() int { return s.capture.Divergences() }
