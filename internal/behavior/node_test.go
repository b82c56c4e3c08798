package behavior

import (
	"testing"

	"github.com/novaengine/novasim/internal/component"
	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/novaengine/novasim/internal/world"
	"github.com/stretchr/testify/require"
)

// newDrones creates n entities carrying AIBehavior and NavigationState.
func newDrones(n int) (*world.State, []ecs.EntityID) {
	ws := world.NewState()
	ids := make([]ecs.EntityID, n)
	for i := range ids {
		id := ws.Create()
		ws.AIBehaviors().Set(id, &component.AIBehavior{})
		ws.Navigation().Set(id, &component.NavigationState{})
		ids[i] = id
	}
	return ws, ids
}

type countingRandom struct {
	svc   *rng.Service
	calls int
}

func (c *countingRandom) NextInt(lo, hi int) int {
	c.calls++
	return c.svc.NextInt(lo, hi)
}

func TestTargetingSelection(t *testing.T) {
	ws, ids := newDrones(3)
	svc := rng.New(42)

	require.Equal(t, Success, Targeting().Tick(ids[0], ws, svc))

	i := rng.New(42).NextInt(0, 2)
	if ids[i] == ids[0] {
		i = (i + 1) % 3
	}
	ai, _ := ws.AIBehaviors().Get(ids[0])
	require.Equal(t, ids[i], ai.Target)
	require.NotEqual(t, ids[0], ai.Target)
	require.Equal(t, uint64(1), svc.State().Draws)
}

func TestTargetingKeepsValidTarget(t *testing.T) {
	ws, ids := newDrones(3)
	ai, _ := ws.AIBehaviors().Get(ids[0])
	ai.Target = ids[2]
	ai.DecisionTimer = 4

	r := &countingRandom{svc: rng.New(1)}
	require.Equal(t, Success, Targeting().Tick(ids[0], ws, r))
	require.Zero(t, r.calls)
	require.Equal(t, ids[2], ai.Target)
	require.Equal(t, 4.0, ai.DecisionTimer)
}

func TestTargetingRetargetsDeadTarget(t *testing.T) {
	ws, ids := newDrones(3)
	ai, _ := ws.AIBehaviors().Get(ids[0])
	ai.Target = ids[2]
	ai.DecisionTimer = 4
	ws.Destroy(ids[2])
	ws.ECS().FlushDestroyQueue()

	r := &countingRandom{svc: rng.New(1)}
	require.Equal(t, Success, Targeting().Tick(ids[0], ws, r))
	require.Equal(t, 1, r.calls)
	require.Equal(t, ids[1], ai.Target)
	require.Zero(t, ai.DecisionTimer)
}

func TestTargetingNeedsTwoCandidates(t *testing.T) {
	ws, ids := newDrones(1)
	ai, _ := ws.AIBehaviors().Get(ids[0])
	ai.Target = 99

	r := &countingRandom{svc: rng.New(1)}
	require.Equal(t, Failure, Targeting().Tick(ids[0], ws, r))
	require.Zero(t, r.calls)
	require.Equal(t, ecs.Null, ai.Target)

	other := ws.Create()
	require.Equal(t, Failure, Targeting().Tick(other, ws, r), "no AIBehavior")
}

func TestManeuver(t *testing.T) {
	ws, ids := newDrones(2)
	m := Maneuver("full_throttle", FullThrottle)

	require.Equal(t, Failure, m.Tick(ids[0], ws, nil))
	nav, _ := ws.Navigation().Get(ids[0])
	require.Zero(t, nav.Throttle)

	nav.HasTarget = true
	require.Equal(t, Success, m.Tick(ids[0], ws, nil))
	require.Equal(t, 1.0, nav.Throttle)

	ws.Navigation().Remove(ids[1])
	require.Equal(t, Failure, m.Tick(ids[1], ws, nil))
}

func TestComposites(t *testing.T) {
	ws, ids := newDrones(1)
	id := ids[0]
	tests := []struct {
		name string
		node *Node
		want Status
	}{
		{"sequence all success", Sequence(Always(Success), Always(Success)), Success},
		{"sequence empty", Sequence(), Success},
		{"sequence failure wins", Sequence(Always(Running), Always(Failure)), Failure},
		{"sequence running", Sequence(Always(Running), Always(Success)), Running},
		{"selector first success", Selector(Always(Failure), Always(Success)), Success},
		{"selector running", Selector(Always(Running), Always(Success)), Running},
		{"selector all fail", Selector(Always(Failure), Always(Failure)), Failure},
		{"selector empty", Selector(), Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.node.Tick(id, ws, nil))
		})
	}
}

func TestSequenceDoesNotShortCircuitOnRunning(t *testing.T) {
	ws, ids := newDrones(1)
	nav, _ := ws.Navigation().Get(ids[0])
	nav.HasTarget = true

	tree := Sequence(Always(Running), Maneuver("half_throttle", HalfThrottle))
	require.Equal(t, Running, tree.Tick(ids[0], ws, nil))
	require.Equal(t, 0.5, nav.Throttle)
}

func TestSelectorStopsAtSuccess(t *testing.T) {
	ws, ids := newDrones(1)
	nav, _ := ws.Navigation().Get(ids[0])
	nav.HasTarget = true

	tree := Selector(Always(Success), Maneuver("idle", func(n component.NavigationState) component.NavigationState {
		n.Throttle = 7
		return n
	}))
	require.Equal(t, Success, tree.Tick(ids[0], ws, nil))
	require.Zero(t, nav.Throttle)
}
