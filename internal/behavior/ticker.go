package behavior

import (
	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/core/event"
	"go.uber.org/zap"
)

// Stats summarizes one tick pass.
type Stats struct {
	Ticked  int
	Skipped int // entities whose tree id is not in the library
	Success int
	Failure int
	Running int
}

// Ticker runs every entity's tree once per step, in ascending entity order.
type Ticker struct {
	lib    *Library
	active map[ecs.EntityID]string // entity → tree id ticked last pass
	bus    *event.Bus
	log    *zap.Logger
	last   Stats
}

// NewTicker creates a ticker over lib and ensures the default tree exists.
// bus may be nil.
func NewTicker(lib *Library, bus *event.Bus, log *zap.Logger) *Ticker {
	if log == nil {
		log = zap.NewNop()
	}
	lib.EnsureDefault()
	return &Ticker{
		lib:    lib,
		active: make(map[ecs.EntityID]string),
		bus:    bus,
		log:    log,
	}
}

// Tick runs one pass. All random draws of the step happen here.
func (t *Ticker) Tick(w ECS, r Random) Stats {
	var st Stats
	for _, id := range w.BehaviorTrees().IDs() {
		if !w.Alive(id) {
			continue
		}
		h, _ := w.BehaviorTrees().Get(id)
		treeID := h.TreeID
		if treeID == "" {
			treeID = DefaultTreeID
		}
		root, ok := t.lib.Get(treeID)
		if !ok {
			st.Skipped++
			t.log.Debug("behavior tree not found",
				zap.Uint32("entity", uint32(id)), zap.String("tree", treeID))
			continue
		}
		t.active[id] = treeID

		prev := t.target(w, id)
		switch root.Tick(id, w, r) {
		case Success:
			st.Success++
		case Failure:
			st.Failure++
		case Running:
			st.Running++
		}
		st.Ticked++

		if t.bus != nil {
			if cur := t.target(w, id); cur != prev && cur != ecs.Null {
				event.Emit(t.bus, event.TargetAcquired{Entity: id, Target: cur})
			}
		}
	}

	for id := range t.active {
		if !w.Alive(id) {
			delete(t.active, id)
		}
	}
	t.last = st
	return st
}

func (t *Ticker) target(w ECS, id ecs.EntityID) ecs.EntityID {
	if ai, ok := w.AIBehaviors().Get(id); ok {
		return ai.Target
	}
	return ecs.Null
}

// Active returns the tree id last ticked for id.
func (t *Ticker) Active(id ecs.EntityID) (string, bool) {
	tree, ok := t.active[id]
	return tree, ok
}

// ActiveCount returns the size of the active-tree map.
func (t *Ticker) ActiveCount() int { return len(t.active) }

// LastStats returns the stats of the most recent pass.
func (t *Ticker) LastStats() Stats { return t.last }

// Reset forgets all active trees.
func (t *Ticker) Reset() {
	clear(t.active)
	t.last = Stats{}
}
