package system

import (
	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/world"
)

// PhysicsSystem integrates positions with explicit Euler. Phase 5 (Physics).
type PhysicsSystem struct {
	world *world.State
}

func NewPhysicsSystem(ws *world.State) *PhysicsSystem {
	return &PhysicsSystem{world: ws}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(dt float64) {
	ecs.Each2(s.world.Positions(), s.world.Velocities(), func(_ ecs.EntityID, p *component.Position, v *component.Velocity) {
		p.X += v.VX * dt
		p.Y += v.VY * dt
		p.Z += v.VZ * dt
	})
}
