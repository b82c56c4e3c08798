package system

import (
	"github.com/novaengine/novasim/internal/behavior"
	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/world"
)

// BehaviorSystem advances AI timers and ticks every behavior tree once. It
// is the only system that draws from the rng stack. Phase 3 (Behavior).
type BehaviorSystem struct {
	world  *world.State
	ticker *behavior.Ticker
	rng    behavior.Random
}

func NewBehaviorSystem(ws *world.State, t *behavior.Ticker, r behavior.Random) *BehaviorSystem {
	return &BehaviorSystem{world: ws, ticker: t, rng: r}
}

func (s *BehaviorSystem) Phase() coresys.Phase { return coresys.PhaseBehavior }

func (s *BehaviorSystem) Update(dt float64) {
	s.world.AIBehaviors().Each(func(_ ecs.EntityID, ai *component.AIBehavior) {
		ai.StateTimer += dt
		ai.DecisionTimer += dt
	})
	s.ticker.Tick(s.world, s.rng)
}
