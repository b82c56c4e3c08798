package replay

import (
	"errors"
	"fmt"
	"os"

	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/rng"
	"go.uber.org/zap"
)

// ErrNoFrames is returned when saving a recorder that captured nothing.
var ErrNoFrames = errors.New("replay: no frames recorded")

// Recorder buffers frames while recording is on.
type Recorder struct {
	frames    []Frame
	seed      uint64
	recording bool
	version   int
	log       *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{version: CurrentVersion, log: log}
}

// SetVersion selects the trace version written by Trace and Save.
// Unsupported versions are ignored.
func (r *Recorder) SetVersion(v int) {
	if v >= 1 && v <= CurrentVersion {
		r.version = v
	}
}

// Start clears the buffer and begins recording runs seeded with seed.
func (r *Recorder) Start(seed uint64) {
	r.frames = nil
	r.seed = seed
	r.recording = true
	r.log.Debug("recording started", zap.Uint64("seed", seed))
}

// Stop ends recording and returns the number of buffered frames.
func (r *Recorder) Stop() int {
	r.recording = false
	return len(r.frames)
}

func (r *Recorder) IsRecording() bool { return r.recording }

// RecordFrame appends a frame when recording; otherwise it does nothing.
// rngState must be the state before the step's behavior tick.
func (r *Recorder) RecordFrame(t float64, in input.Snapshot, rngState rng.StreamState, w ECS) {
	if !r.recording {
		return
	}
	entities := Snapshot(w)
	f := Frame{T: t, Input: in, RNG: rngState, Entities: entities}
	if r.version >= 2 {
		f.Checksum = Checksum(entities)
	}
	r.frames = append(r.frames, f)
}

func (r *Recorder) Seed() uint64    { return r.seed }
func (r *Recorder) Len() int        { return len(r.frames) }
func (r *Recorder) Frames() []Frame { return r.frames }

// Trace returns the buffered frames as a trace value. The frame slice is
// copied; frames are immutable once recorded.
func (r *Recorder) Trace() *Trace {
	frames := make([]Frame, len(r.frames))
	copy(frames, r.frames)
	return &Trace{Version: r.version, Seed: r.seed, Frames: frames}
}

// Save writes the buffer to path as a textual trace.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	if err := r.Trace().Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trace %s: %w", path, err)
	}
	r.log.Info("trace saved", zap.String("path", path), zap.Int("frames", len(r.frames)))
	return nil
}
