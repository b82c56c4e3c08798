// Package timestep turns wall-clock progression into a reproducible
// per-frame tick program.
package timestep

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// MaxSubsteps caps the number of fixed updates produced by one frame.
const MaxSubsteps = 5

// Clock abstracts the wall clock so frame timing can be driven by tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is the result of one Update.
type State struct {
	Delta         float64 // clamped raw delta, 0 while paused
	SmoothedDelta float64
	FixedDelta    float64
	Accumulator   float64
	Alpha         float64 // interpolation factor, accumulator / fixedΔt
	UpdateCount   int
	TimeScale     float64
	UnscaledTime  float64
	ScaledTime    float64
}

// Config holds the manager's tunables. Non-positive FixedHz, MaxDelta and
// SmoothingWindow fall back to DefaultConfig's. TimeScale is used as given;
// zero freezes scaled time.
type Config struct {
	Mode            Mode
	FixedHz         float64
	TimeScale       float64
	MaxDelta        float64 // seconds
	SmoothingWindow int
}

// DefaultConfig is semi-fixed at 60 Hz with a 100 ms clamp and a 10 frame window.
func DefaultConfig() Config {
	return Config{
		Mode:            SemiFixed,
		FixedHz:         60,
		TimeScale:       1,
		MaxDelta:        0.1,
		SmoothingWindow: 10,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger attaches a logger; spiral-of-death clamps are reported at Debug.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager is the frame time manager. Owned by the sim thread.
type Manager struct {
	mode      Mode
	state     State
	maxDelta  float64
	window    int
	history   []float64
	paused    bool
	pausedRan bool // an Update happened while paused

	clock      Clock
	lastFrame  time.Time
	frameStart time.Time
	log        *zap.Logger
}

// NewManager creates a manager whose reference time is now.
func NewManager(cfg Config, opts ...Option) *Manager {
	def := DefaultConfig()
	m := &Manager{
		mode:     cfg.Mode,
		maxDelta: def.MaxDelta,
		window:   def.SmoothingWindow,
		clock:    systemClock{},
		log:      zap.NewNop(),
	}
	m.state.FixedDelta = 1 / def.FixedHz
	for _, opt := range opts {
		opt(m)
	}
	m.SetFixedHz(cfg.FixedHz)
	m.SetMaxDelta(cfg.MaxDelta)
	m.SetSmoothingWindow(cfg.SmoothingWindow)
	m.state.TimeScale = cfg.TimeScale
	m.lastFrame = m.clock.Now()
	m.frameStart = m.lastFrame
	return m
}

// BeginFrame records the frame start time.
func (m *Manager) BeginFrame() {
	m.frameStart = m.clock.Now()
}

// Update measures the delta since the previous frame start and produces the
// frame's tick program.
func (m *Manager) Update() State {
	raw := m.frameStart.Sub(m.lastFrame).Seconds()
	m.lastFrame = m.frameStart
	if m.paused {
		raw = 0
		m.pausedRan = true
	}
	return m.Advance(raw)
}

// Advance runs one update with an explicit raw delta in seconds, bypassing
// the clock. Update delegates here.
func (m *Manager) Advance(raw float64) State {
	if raw > m.maxDelta {
		m.log.Debug("frame delta clamped",
			zap.Float64("raw", raw), zap.Float64("max", m.maxDelta))
		raw = m.maxDelta
	}
	if raw < 0 || math.IsNaN(raw) {
		raw = 0
	}

	st := &m.state
	st.Delta = raw
	st.SmoothedDelta = m.smooth(raw)

	scaled := st.SmoothedDelta * st.TimeScale
	st.UnscaledTime += st.SmoothedDelta
	st.ScaledTime += scaled

	st.UpdateCount = 0
	st.Alpha = 0
	switch m.mode {
	case Variable:
		st.UpdateCount = 1
	case Fixed:
		m.accumulate(st.SmoothedDelta)
	case SemiFixed:
		m.accumulate(scaled)
	}
	return *st
}

func (m *Manager) smooth(raw float64) float64 {
	m.history = append(m.history, raw)
	if over := len(m.history) - m.window; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
	var sum float64
	for _, d := range m.history {
		sum += d
	}
	return sum / float64(len(m.history))
}

func (m *Manager) accumulate(d float64) {
	st := &m.state
	if d > 0 {
		st.Accumulator += d
	}
	for st.Accumulator >= st.FixedDelta && st.UpdateCount < MaxSubsteps {
		st.Accumulator -= st.FixedDelta
		st.UpdateCount++
	}
	if st.Accumulator >= st.FixedDelta {
		// Whole steps beyond the cap are dropped.
		st.Accumulator = math.Mod(st.Accumulator, st.FixedDelta)
	}
	if st.Accumulator < 0 {
		st.Accumulator = 0
	}
	st.Alpha = st.Accumulator / st.FixedDelta
}

// StepDelta is the duration of each update in the last tick program:
// fixedΔt in the accumulator modes, smoothedΔt in Variable. Time scale only
// reaches ScaledTime and the SemiFixed accumulator.
func (m *Manager) StepDelta() float64 {
	if m.mode == Variable {
		return m.state.SmoothedDelta
	}
	return m.state.FixedDelta
}

// State returns the result of the last Update.
func (m *Manager) State() State { return m.state }

func (m *Manager) Mode() Mode { return m.mode }

// SetMode switches mode. The accumulator is kept.
func (m *Manager) SetMode(mode Mode) { m.mode = mode }

// SetFixedHz sets the fixed step rate. Non-positive rates are ignored.
func (m *Manager) SetFixedHz(hz float64) {
	if hz > 0 {
		m.state.FixedDelta = 1 / hz
	}
}

func (m *Manager) FixedHz() float64 { return 1 / m.state.FixedDelta }

func (m *Manager) SetTimeScale(scale float64) { m.state.TimeScale = scale }

func (m *Manager) TimeScale() float64 { return m.state.TimeScale }

// SetMaxDelta sets the delta clamp in seconds. Non-positive values are ignored.
func (m *Manager) SetMaxDelta(seconds float64) {
	if seconds > 0 {
		m.maxDelta = seconds
	}
}

// SetSmoothingWindow resizes the smoothing window. Non-positive sizes are ignored.
func (m *Manager) SetSmoothingWindow(n int) {
	if n <= 0 {
		return
	}
	m.window = n
	if over := len(m.history) - n; over > 0 {
		m.history = append(m.history[:0], m.history[over:]...)
	}
}

// Pause makes every following Update report a zero delta.
func (m *Manager) Pause() {
	if !m.paused {
		m.paused = true
		m.pausedRan = false
	}
}

// Resume ends a pause. When an Update ran during the pause the reference
// time is rebased to now, so wall-clock time spent paused never reaches the
// simulation.
func (m *Manager) Resume() {
	if !m.paused {
		return
	}
	m.paused = false
	if m.pausedRan {
		m.lastFrame = m.clock.Now()
	}
}

func (m *Manager) IsPaused() bool { return m.paused }
