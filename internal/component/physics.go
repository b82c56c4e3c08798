package component

import "github.com/novaengine/novasim/internal/input"

// Position is an entity's world-space location.
// Pure data; systems do all mutation.
type Position struct {
	X, Y, Z float64
}

// Velocity is linear velocity in units per second.
type Velocity struct {
	VX, VY, VZ float64
}

// Controller marks the entity steered by player input. Input is the
// snapshot served for the current step.
type Controller struct {
	Speed float64
	Input input.Snapshot
}
