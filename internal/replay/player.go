package replay

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Player serves recorded frames in order.
type Player struct {
	frames  []Frame
	seed    uint64
	cursor  int
	playing bool
	log     *zap.Logger
}

func NewPlayer(log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{log: log}
}

// Load parses the trace at path. On failure the player keeps its previous
// frames and stays idle.
func (p *Player) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	tr, err := Decode(f)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", path, err)
	}
	p.log.Info("trace loaded", zap.String("path", path),
		zap.Int("version", tr.Version), zap.Int("frames", len(tr.Frames)))
	return p.LoadTrace(tr)
}

// LoadTrace installs an already decoded trace.
func (p *Player) LoadTrace(tr *Trace) error {
	if tr == nil || len(tr.Frames) == 0 {
		return ErrEmptyTrace
	}
	p.SetFrames(tr.Seed, tr.Frames)
	return nil
}

// SetFrames replaces the frames and rewinds the cursor. Playback is not armed.
func (p *Player) SetFrames(seed uint64, frames []Frame) {
	p.frames = frames
	p.seed = seed
	p.cursor = 0
	p.playing = false
}

// Begin arms playback from the first frame. It reports whether any frames exist.
func (p *Player) Begin() bool {
	p.playing = len(p.frames) > 0
	p.cursor = 0
	return p.playing
}

// Stop disarms playback and rewinds.
func (p *Player) Stop() {
	p.playing = false
	p.cursor = 0
}

// Next returns the next frame and advances the cursor. It returns false once
// the buffer is exhausted. Playing is cleared when the last frame is handed
// out and on any call past the end.
func (p *Player) Next() (*Frame, bool) {
	if !p.playing || p.cursor >= len(p.frames) {
		p.playing = false
		return nil, false
	}
	f := &p.frames[p.cursor]
	p.cursor++
	if p.cursor >= len(p.frames) {
		p.playing = false
	}
	return f, true
}

// Apply overwrites Position and, where present, Velocity of every frame
// entity that is still alive. Components are never added.
func (p *Player) Apply(f *Frame, w ECS) {
	for i := range f.Entities {
		e := &f.Entities[i]
		if !w.Alive(e.ID) {
			continue
		}
		if pos, ok := w.Positions().Get(e.ID); ok {
			*pos = e.Position
		}
		if vel, ok := w.Velocities().Get(e.ID); ok {
			*vel = e.Velocity
		}
	}
}

// Verify hashes the live entity state and compares it with the frame's
// recorded checksum. Frames without a checksum always match.
func (p *Player) Verify(f *Frame, w ECS) (actual string, ok bool) {
	if f.Checksum == "" {
		return "", true
	}
	actual = Checksum(Snapshot(w))
	return actual, actual == f.Checksum
}

func (p *Player) IsPlaying() bool { return p.playing }
func (p *Player) Seed() uint64    { return p.seed }
func (p *Player) Len() int        { return len(p.frames) }

// Consumed returns how many frames Next has handed out since Begin.
func (p *Player) Consumed() int { return p.cursor }
