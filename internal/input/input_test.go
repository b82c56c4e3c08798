package input

import (
	"testing"

	"github.com/novaengine/novasim/internal/rng"
	"github.com/stretchr/testify/require"
)

func TestBoolsRoundTrip(t *testing.T) {
	s := Snapshot{Forward: true, StrafeRight: true, Boost: true, Right: true, CameraYaw: -1.25}
	require.Equal(t, s, FromBools(s.Bools(), s.CameraYaw))
}

func TestScriptedDeterministic(t *testing.T) {
	a := NewScripted(rng.New(7))
	b := NewScripted(rng.New(7))
	for step := uint64(0); step < 200; step++ {
		sa, sb := a.Gather(step), b.Gather(step)
		require.Equal(t, sa, sb)
		require.False(t, sa.Forward && sa.Back)
	}
}

func TestScriptedLeavesStackAlone(t *testing.T) {
	svc := rng.New(3)
	before := svc.State()
	src := NewScripted(svc)
	for step := uint64(0); step < 50; step++ {
		src.Gather(step)
	}
	require.Equal(t, before, svc.State())
	require.True(t, svc.HasNamed(StreamName))
}

func TestStatic(t *testing.T) {
	s := Static{Snapshot: Snapshot{Up: true}}
	require.Equal(t, Snapshot{Up: true}, s.Gather(99))
}
