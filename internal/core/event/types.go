package event

import "github.com/novaengine/novasim/internal/core/ecs"

// RecordingStarted is emitted when the recorder arms.
type RecordingStarted struct {
	Seed uint64
}

// RecordingStopped is emitted when the recorder disarms.
type RecordingStopped struct {
	Frames int
	Path   string
}

// PlaybackStarted is emitted when a loaded trace begins playing.
type PlaybackStarted struct {
	Seed   uint64
	Frames int
}

// PlaybackFinished is emitted when the player runs out of frames or is stopped.
type PlaybackFinished struct {
	Consumed    int
	Divergences int
}

// DivergenceDetected reports a live state checksum that differs from the
// recorded one before the frame was applied.
type DivergenceDetected struct {
	Step     uint64
	Expected string
	Actual   string
}

// TargetAcquired is emitted when a Targeting node picks a new target.
type TargetAcquired struct {
	Entity ecs.EntityID
	Target ecs.EntityID
}
