package system

import (
	"math"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/world"
)

// NavigationSystem resolves each AI target to a position and steers towards
// it at throttle × speed. Phase 4 (Navigation).
type NavigationSystem struct {
	world *world.State
	speed float64
}

func NewNavigationSystem(ws *world.State, speed float64) *NavigationSystem {
	return &NavigationSystem{world: ws, speed: speed}
}

func (s *NavigationSystem) Phase() coresys.Phase { return coresys.PhaseNavigation }

func (s *NavigationSystem) Update(_ float64) {
	ecs.Each2(s.world.AIBehaviors(), s.world.Navigation(), func(id ecs.EntityID, ai *component.AIBehavior, nav *component.NavigationState) {
		nav.HasTarget = false
		if ai.Target != ecs.Null && s.world.Alive(ai.Target) {
			if tp, ok := s.world.Positions().Get(ai.Target); ok {
				nav.TargetPosition = *tp
				nav.HasTarget = true
			}
		}
		ai.State = component.AIPatrol
		if nav.HasTarget {
			ai.State = component.AIPursue
		}

		pos, okP := s.world.Positions().Get(id)
		vel, okV := s.world.Velocities().Get(id)
		if !okP || !okV {
			return
		}
		if !nav.HasTarget {
			*vel = component.Velocity{}
			return
		}
		*vel = s.steer(*pos, nav)
	})
}

// steer points the velocity at the target scaled by throttle × speed. A
// negative throttle flies away from it. Yaw and pitch follow the velocity.
func (s *NavigationSystem) steer(pos component.Position, nav *component.NavigationState) component.Velocity {
	dx := nav.TargetPosition.X - pos.X
	dy := nav.TargetPosition.Y - pos.Y
	dz := nav.TargetPosition.Z - pos.Z
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if dist == 0 || nav.Throttle == 0 {
		return component.Velocity{}
	}
	k := nav.Throttle * s.speed / dist
	v := component.Velocity{VX: dx * k, VY: dy * k, VZ: dz * k}
	sign := math.Copysign(1, nav.Throttle)
	nav.Yaw = math.Atan2(sign*dx, sign*dz)
	nav.Pitch = math.Asin(sign * dy / dist)
	return v
}
