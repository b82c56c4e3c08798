package ecs

import "slices"

// World owns the entity pool and the component registry. Destruction is
// deferred: entities queued during a step stay alive until Flush so systems
// later in the step still see a consistent world.
type World struct {
	pool     *EntityPool
	registry *Registry
	queued   map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
		queued:   make(map[EntityID]struct{}),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues id for the next flush. Dead ids and repeats are
// ignored.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.queued[id] = struct{}{}
}

// PendingDestruction returns the number of queued entities.
func (w *World) PendingDestruction() int { return len(w.queued) }

// FlushDestroyQueue destroys the queued entities in ascending id order,
// strips their components and returns how many were destroyed.
func (w *World) FlushDestroyQueue() int {
	if len(w.queued) == 0 {
		return 0
	}
	ids := make([]EntityID, 0, len(w.queued))
	for id := range w.queued {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		delete(w.queued, id)
	}
	return len(ids)
}
