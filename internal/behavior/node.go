// Package behavior runs per-entity behavior trees once per simulation step.
//
// Trees are built from four node kinds (sequence, selector, targeting and
// maneuver) plus a fixed-status leaf. Nodes carry no per-entity state, so a
// subtree may be shared between trees; the only random draws happen in
// targeting nodes, in the order the ticker visits entities.
package behavior

import (
	"fmt"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
)

// Status is the result of ticking a node.
type Status uint8

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindSequence Kind = iota
	KindSelector
	KindTargeting
	KindManeuver
	KindStatus
)

// Effect is a pure transformation of an entity's navigation state.
type Effect func(component.NavigationState) component.NavigationState

// ECS is the component access a tick needs. world.State implements it.
type ECS interface {
	Alive(id ecs.EntityID) bool
	AIBehaviors() *ecs.PtrComponentStore[component.AIBehavior]
	Navigation() *ecs.PtrComponentStore[component.NavigationState]
	BehaviorTrees() *ecs.PtrComponentStore[component.BehaviorTreeHandle]
}

// Random is the draw a tick may perform.
type Random interface {
	NextInt(lo, hi int) int
}

// Node is one behavior tree node. Build nodes with the constructors below.
type Node struct {
	kind     Kind
	children []*Node
	effect   Effect
	status   Status
	name     string
}

// Sequence ticks children in order and fails on the first failure.
func Sequence(children ...*Node) *Node {
	return &Node{kind: KindSequence, children: children}
}

// Selector ticks children in order and stops at the first success or running child.
func Selector(children ...*Node) *Node {
	return &Node{kind: KindSelector, children: children}
}

// Targeting keeps the entity's AI target valid, picking a random peer when
// the current one is null or dead.
func Targeting() *Node {
	return &Node{kind: KindTargeting}
}

// Maneuver applies effect to the entity's navigation state while it has a target.
func Maneuver(name string, effect Effect) *Node {
	return &Node{kind: KindManeuver, effect: effect, name: name}
}

// Always is a leaf that returns s without side effects.
func Always(s Status) *Node {
	return &Node{kind: KindStatus, status: s}
}

func (n *Node) Kind() Kind        { return n.kind }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Name() string      { return n.name }

// Tick evaluates the node for entity id.
func (n *Node) Tick(id ecs.EntityID, w ECS, r Random) Status {
	switch n.kind {
	case KindSequence:
		running := false
		for _, c := range n.children {
			switch c.Tick(id, w, r) {
			case Failure:
				return Failure
			case Running:
				running = true
			}
		}
		if running {
			return Running
		}
		return Success
	case KindSelector:
		for _, c := range n.children {
			if s := c.Tick(id, w, r); s != Failure {
				return s
			}
		}
		return Failure
	case KindTargeting:
		return tickTargeting(id, w, r)
	case KindManeuver:
		return tickManeuver(n.effect, id, w)
	case KindStatus:
		return n.status
	}
	return Failure
}

func tickTargeting(id ecs.EntityID, w ECS, r Random) Status {
	ai, ok := w.AIBehaviors().Get(id)
	if !ok {
		return Failure
	}
	if ai.Target != ecs.Null && w.Alive(ai.Target) {
		return Success
	}

	var candidates []ecs.EntityID
	for _, c := range w.AIBehaviors().IDs() {
		if w.Alive(c) {
			candidates = append(candidates, c)
		}
	}
	n := len(candidates)
	if n < 2 {
		ai.Target = ecs.Null
		return Failure
	}

	i := r.NextInt(0, n-1)
	if candidates[i] == id {
		i = (i + 1) % n
	}
	ai.Target = candidates[i]
	ai.DecisionTimer = 0
	return Success
}

func tickManeuver(effect Effect, id ecs.EntityID, w ECS) Status {
	nav, ok := w.Navigation().Get(id)
	if !ok || !nav.HasTarget {
		return Failure
	}
	if effect != nil {
		*nav = effect(*nav)
	}
	return Success
}
