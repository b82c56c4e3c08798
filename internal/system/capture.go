package system

import (
	"github.com/novaengine/novasim/internal/core/event"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/replay"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/novaengine/novasim/internal/world"
	"go.uber.org/zap"
)

// StateRandom is the rng access capture needs.
type StateRandom interface {
	State() rng.StreamState
	RestoreState(rng.StreamState)
}

// CaptureSystem sits between input and behavior. While recording it
// snapshots the pre-tick RNG state and entities; while replaying it checks
// the live state against the frame checksum, restores the RNG and applies
// the frame's entities. Phase 2 (Capture).
type CaptureSystem struct {
	world    *world.State
	step     *Step
	rng      StateRandom
	recorder *replay.Recorder
	player   *replay.Player
	bus      *event.Bus
	log      *zap.Logger

	verify      bool
	divergences int
}

func NewCaptureSystem(ws *world.State, step *Step, r StateRandom, rec *replay.Recorder, player *replay.Player, bus *event.Bus, log *zap.Logger) *CaptureSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureSystem{
		world:    ws,
		step:     step,
		rng:      r,
		recorder: rec,
		player:   player,
		bus:      bus,
		log:      log,
		verify:   true,
	}
}

func (s *CaptureSystem) Phase() coresys.Phase { return coresys.PhaseCapture }

// SetVerify toggles checksum comparison during playback.
func (s *CaptureSystem) SetVerify(on bool) { s.verify = on }

// Divergences returns the number of checksum mismatches seen since the last reset.
func (s *CaptureSystem) Divergences() int { return s.divergences }

func (s *CaptureSystem) ResetDivergences() { s.divergences = 0 }

func (s *CaptureSystem) Update(_ float64) {
	if f := s.step.Frame; f != nil {
		if s.verify {
			if actual, ok := s.player.Verify(f, s.world); !ok {
				s.divergences++
				s.log.Warn("replay divergence",
					zap.Uint64("step", s.step.Index),
					zap.String("expected", f.Checksum),
					zap.String("actual", actual))
				if s.bus != nil {
					event.Emit(s.bus, event.DivergenceDetected{Step: s.step.Index, Expected: f.Checksum, Actual: actual})
				}
			}
		}
		s.rng.RestoreState(f.RNG)
		s.player.Apply(f, s.world)
		return
	}
	s.recorder.RecordFrame(s.step.T, s.step.Input, s.rng.State(), s.world)
}
