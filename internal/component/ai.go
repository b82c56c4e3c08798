package component

import "github.com/novaengine/novasim/internal/core/ecs"

// AIState is the coarse mood of an AI entity.
type AIState uint8

const (
	AIIdle AIState = iota
	AIPatrol
	AIPursue
	AIFlee
)

// AIBehavior holds per-entity decision state read and written by behavior trees.
type AIBehavior struct {
	State         AIState
	StateTimer    float64
	DecisionTimer float64
	Target        ecs.EntityID // ecs.Null when unassigned
	Aggression    float64      // 0 = peaceful, 1 = aggressive
	Caution       float64      // 0 = reckless, 1 = cautious
}

// NavigationState is the steering request consumed by the navigation system.
type NavigationState struct {
	TargetPosition Position
	Throttle       float64
	Yaw            float64
	Pitch          float64
	HasTarget      bool
}

// BehaviorTreeHandle binds an entity to a tree in the behavior library.
// An empty TreeID resolves to "default".
type BehaviorTreeHandle struct {
	TreeID string
}
