// Package replay records and plays back the per-step state needed to
// reproduce a simulation run: input, pre-tick RNG state and entity physics.
package replay

import (
	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/rng"
)

// EntitySnapshot is the physics state of one entity.
type EntitySnapshot struct {
	ID          ecs.EntityID
	Position    component.Position
	Velocity    component.Velocity
	HasVelocity bool
}

// Frame is the atomic unit of a trace.
type Frame struct {
	T        float64
	Input    input.Snapshot
	RNG      rng.StreamState
	Entities []EntitySnapshot
	Checksum string // hex digest of Entities; empty in version 1 traces
}

// ECS is the component access the recorder and player need.
type ECS interface {
	Alive(id ecs.EntityID) bool
	Positions() *ecs.PtrComponentStore[component.Position]
	Velocities() *ecs.PtrComponentStore[component.Velocity]
}

// Snapshot captures every entity carrying a Position, in ascending id order.
// Velocity is zero when absent.
func Snapshot(w ECS) []EntitySnapshot {
	out := make([]EntitySnapshot, 0, w.Positions().Len())
	w.Positions().Each(func(id ecs.EntityID, p *component.Position) {
		s := EntitySnapshot{ID: id, Position: *p}
		if v, ok := w.Velocities().Get(id); ok {
			s.Velocity = *v
			s.HasVelocity = true
		}
		out = append(out, s)
	})
	return out
}
