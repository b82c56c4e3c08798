package system

import (
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/replay"
)

// Step carries the values of the step in progress. The sim fills it in
// before each Runner.Tick; systems only read it.
type Step struct {
	Index uint64
	T     float64        // simulation time at the end of the step
	Input input.Snapshot // live input, or the frame's input while replaying
	Frame *replay.Frame  // non-nil while replaying
}
