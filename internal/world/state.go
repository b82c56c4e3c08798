// Package world holds the simulation's entity state: the ECS world plus one
// typed store per component.
package world

import (
	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
)

// State tracks every entity in the simulation.
// Single-goroutine access only (sim thread).
type State struct {
	ecs *ecs.World

	positions   *ecs.PtrComponentStore[component.Position]
	velocities  *ecs.PtrComponentStore[component.Velocity]
	controllers *ecs.PtrComponentStore[component.Controller]
	ai          *ecs.PtrComponentStore[component.AIBehavior]
	nav         *ecs.PtrComponentStore[component.NavigationState]
	trees       *ecs.PtrComponentStore[component.BehaviorTreeHandle]
}

func NewState() *State {
	w := ecs.NewWorld()
	return &State{
		ecs:         w,
		positions:   ecs.NewStore[component.Position](w),
		velocities:  ecs.NewStore[component.Velocity](w),
		controllers: ecs.NewStore[component.Controller](w),
		ai:          ecs.NewStore[component.AIBehavior](w),
		nav:         ecs.NewStore[component.NavigationState](w),
		trees:       ecs.NewStore[component.BehaviorTreeHandle](w),
	}
}

// ECS exposes the underlying world for systems that flush or create entities.
func (s *State) ECS() *ecs.World { return s.ecs }

func (s *State) Positions() *ecs.PtrComponentStore[component.Position]     { return s.positions }
func (s *State) Velocities() *ecs.PtrComponentStore[component.Velocity]    { return s.velocities }
func (s *State) Controllers() *ecs.PtrComponentStore[component.Controller] { return s.controllers }
func (s *State) AIBehaviors() *ecs.PtrComponentStore[component.AIBehavior] { return s.ai }
func (s *State) Navigation() *ecs.PtrComponentStore[component.NavigationState] {
	return s.nav
}
func (s *State) BehaviorTrees() *ecs.PtrComponentStore[component.BehaviorTreeHandle] {
	return s.trees
}

// Create allocates a new entity with no components.
func (s *State) Create() ecs.EntityID { return s.ecs.CreateEntity() }

// Alive reports whether id refers to a live entity.
func (s *State) Alive(id ecs.EntityID) bool { return s.ecs.Alive(id) }

// Destroy queues id for removal at the end of the step.
func (s *State) Destroy(id ecs.EntityID) { s.ecs.MarkForDestruction(id) }

// Len returns the number of live entities.
func (s *State) Len() int { return s.ecs.Pool().Len() }
