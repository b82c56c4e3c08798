package sim

import (
	"github.com/novaengine/novasim/internal/core/event"
	"github.com/novaengine/novasim/internal/replay"
	"go.uber.org/zap"
)

// StartRecording resets the sim to seed and records every following step.
func (s *Sim) StartRecording(seed uint64) {
	if s.replaying {
		s.StopPlayback()
	}
	s.Reset(seed)
	s.recorder.Start(seed)
	s.log.Debug("recording started", zap.Uint64("seed", seed))
	event.Emit(s.bus, event.RecordingStarted{Seed: seed})
}

// StopRecording ends recording and, when path is not empty, saves the trace.
func (s *Sim) StopRecording(path string) error {
	n := s.recorder.Stop()
	s.log.Debug("recording stopped", zap.Int("frames", n))
	event.Emit(s.bus, event.RecordingStopped{Frames: n, Path: path})
	s.bus.Flush()
	if path == "" {
		return nil
	}
	return s.recorder.Save(path)
}

// Trace returns the frames recorded so far.
func (s *Sim) Trace() *replay.Trace { return s.recorder.Trace() }

func (s *Sim) IsRecording() bool { return s.recorder.IsRecording() }

// LoadReplay loads a trace file into the player without starting it.
func (s *Sim) LoadReplay(path string) error { return s.player.Load(path) }

// LoadTrace installs a decoded trace into the player without starting it.
func (s *Sim) LoadTrace(tr *replay.Trace) error { return s.player.LoadTrace(tr) }

// PlayLoaded resets the sim to the trace seed and starts playback.
func (s *Sim) PlayLoaded() error {
	if s.player.Len() == 0 {
		return replay.ErrEmptyTrace
	}
	if s.recorder.IsRecording() {
		s.recorder.Stop()
	}
	s.Reset(s.player.Seed())
	s.player.Begin()
	s.replaying = true
	s.capture.ResetDivergences()
	s.log.Debug("playback started", zap.Uint64("seed", s.player.Seed()), zap.Int("frames", s.player.Len()))
	event.Emit(s.bus, event.PlaybackStarted{Seed: s.player.Seed(), Frames: s.player.Len()})
	return nil
}

// StopPlayback ends playback; following steps use live input.
func (s *Sim) StopPlayback() {
	if s.replaying {
		s.finishPlayback()
	}
}

// LoadedFrames returns the number of frames held by the player.
func (s *Sim) LoadedFrames() int { return s.player.Len() }

// IsPlaying reports whether steps are being served from the trace.
func (s *Sim) IsPlaying() bool { return s.replaying }

func (s *Sim) finishPlayback() {
	consumed := s.player.Consumed()
	s.player.Stop()
	s.replaying = false
	div := s.capture.Divergences()
	s.log.Debug("playback finished", zap.Int("frames", consumed), zap.Int("divergences", div))
	event.Emit(s.bus, event.PlaybackFinished{Consumed: consumed, Divergences: div})
	s.bus.Flush()
}
