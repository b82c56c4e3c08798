package world

import (
	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
)

// SpawnConfig describes the initial scene.
type SpawnConfig struct {
	Drones      int
	Extent      float64 // drones spawn inside [-Extent, Extent] on each axis
	PlayerSpeed float64
	TreeIDs     []string // assigned round-robin; empty means "default"
}

// Random is the slice of the rng service used to lay out a scene.
type Random interface {
	With(name string, offset uint64, fn func())
	NextF64() float64
}

// Scene lists the entities created by Spawn.
type Scene struct {
	Player ecs.EntityID
	Drones []ecs.EntityID
}

// Spawn creates the player at the origin and cfg.Drones AI drones at random
// positions. All draws happen inside a pushed "spawn" context, so the
// global stream is left where it was.
func (s *State) Spawn(r Random, cfg SpawnConfig) Scene {
	var scene Scene

	scene.Player = s.Create()
	s.positions.Set(scene.Player, &component.Position{})
	s.velocities.Set(scene.Player, &component.Velocity{})
	s.controllers.Set(scene.Player, &component.Controller{Speed: cfg.PlayerSpeed})

	r.With("spawn", 0, func() {
		for i := 0; i < cfg.Drones; i++ {
			id := s.Create()
			s.positions.Set(id, &component.Position{
				X: (r.NextF64()*2 - 1) * cfg.Extent,
				Y: (r.NextF64()*2 - 1) * cfg.Extent,
				Z: (r.NextF64()*2 - 1) * cfg.Extent,
			})
			s.velocities.Set(id, &component.Velocity{})
			s.ai.Set(id, &component.AIBehavior{
				State:      component.AIPatrol,
				Aggression: r.NextF64(),
				Caution:    r.NextF64(),
			})
			s.nav.Set(id, &component.NavigationState{})
			var tree string
			if len(cfg.TreeIDs) > 0 {
				tree = cfg.TreeIDs[i%len(cfg.TreeIDs)]
			}
			s.trees.Set(id, &component.BehaviorTreeHandle{TreeID: tree})
			scene.Drones = append(scene.Drones, id)
		}
	})
	return scene
}
