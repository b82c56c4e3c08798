package system

import (
	coresys "github.com/novaengine/novasim/internal/core/system"
	"github.com/novaengine/novasim/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem destroys the entities queued during the step. Runs last so
// capture, behavior and navigation all saw the same population.
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ float64) {
	if n := s.world.ECS().FlushDestroyQueue(); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n), zap.Int("remaining", s.world.Len()))
	}
}
