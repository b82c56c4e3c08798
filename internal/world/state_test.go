package world

import (
	"testing"

	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/rng"
	"github.com/stretchr/testify/require"
)

func TestSpawnLeavesGlobalStream(t *testing.T) {
	svc := rng.New(42)
	ws := NewState()
	scene := ws.Spawn(svc, SpawnConfig{Drones: 3, Extent: 10, PlayerSpeed: 5, TreeIDs: []string{"default", "hunter"}})

	require.Equal(t, rng.StreamState{Seed: 42}, svc.State())
	require.Equal(t, 1, svc.Depth())
	require.Len(t, scene.Drones, 3)
	require.Equal(t, 4, ws.Len())
	require.Equal(t, []ecs.EntityID{2, 3, 4}, ws.AIBehaviors().IDs())

	h, ok := ws.BehaviorTrees().Get(scene.Drones[1])
	require.True(t, ok)
	require.Equal(t, "hunter", h.TreeID)
}

func TestSpawnDeterministic(t *testing.T) {
	a, b := NewState(), NewState()
	a.Spawn(rng.New(9), SpawnConfig{Drones: 5, Extent: 50})
	b.Spawn(rng.New(9), SpawnConfig{Drones: 5, Extent: 50})
	for _, id := range a.Positions().IDs() {
		pa, _ := a.Positions().Get(id)
		pb, _ := b.Positions().Get(id)
		require.Equal(t, *pa, *pb)
		require.LessOrEqual(t, pa.X, 50.0)
		require.GreaterOrEqual(t, pa.X, -50.0)
	}
}

func TestDestroyIsDeferred(t *testing.T) {
	ws := NewState()
	scene := ws.Spawn(rng.New(1), SpawnConfig{Drones: 2})
	ws.Destroy(scene.Drones[0])
	require.True(t, ws.Alive(scene.Drones[0]))

	ws.ECS().FlushDestroyQueue()
	require.False(t, ws.Alive(scene.Drones[0]))
	require.False(t, ws.Positions().Has(scene.Drones[0]))
	require.False(t, ws.AIBehaviors().Has(scene.Drones[0]))
	require.True(t, ws.AIBehaviors().Has(scene.Drones[1]))
}
