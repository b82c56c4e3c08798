package system

import (
	"github.com/novaengine/novasim/internal/core/event"
	coresys "github.com/novaengine/novasim/internal/core/system"
)

// EventDispatchSystem makes last step's events visible and delivers them.
// Phase 0 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ float64) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
