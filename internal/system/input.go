package system

import (
	"math"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/input"
	"github.com/novaengine/novasim/internal/world"
)

// InputSystem routes the step's input to every controlled entity and turns
// it into a velocity. Phase 1 (Input).
type InputSystem struct {
	world *world.State
	step  *Step
}

func NewInputSystem(ws *world.State, step *Step) *InputSystem {
	return &InputSystem{world: ws, step: step}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ float64) {
	ecs.Each2(s.world.Controllers(), s.world.Velocities(), func(_ ecs.EntityID, c *component.Controller, v *component.Velocity) {
		c.Input = s.step.Input
		*v = ControlVelocity(s.step.Input, c.Speed)
	})
}

// ControlVelocity maps input axes to a world-space velocity. Forward is +Z
// and strafe right is +X before the camera yaw rotates the XZ plane. Left
// and Right act as strafe keys. Sprint doubles, crouch halves and boost
// triples the speed; Slide has no effect on velocity.
func ControlVelocity(in input.Snapshot, speed float64) component.Velocity {
	var x, y, z float64
	if in.Forward {
		z++
	}
	if in.Back {
		z--
	}
	if in.StrafeRight || in.Right {
		x++
	}
	if in.StrafeLeft || in.Left {
		x--
	}
	if in.Up {
		y++
	}
	if in.Down {
		y--
	}
	if x == 0 && y == 0 && z == 0 {
		return component.Velocity{}
	}

	scale := speed / math.Sqrt(x*x+y*y+z*z)
	if in.Sprint {
		scale *= 2
	}
	if in.Crouch {
		scale *= 0.5
	}
	if in.Boost {
		scale *= 3
	}

	sin, cos := math.Sincos(in.CameraYaw)
	return component.Velocity{
		VX: (x*cos + z*sin) * scale,
		VY: y * scale,
		VZ: (z*cos - x*sin) * scale,
	}
}
