package rng

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func draw(s *Service, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = s.NextU64()
	}
	return out
}

func TestReferenceSequence(t *testing.T) {
	s := New(5489)
	require.Equal(t, uint64(14514284786278117030), s.NextU64())
	for i := 1; i < 9999; i++ {
		s.NextU64()
	}
	require.Equal(t, uint64(9981545732273789042), s.NextU64())
	require.Equal(t, StreamState{Seed: 5489, Draws: 10000}, s.State())

	s.SetGlobalSeed(42)
	require.Equal(t, []uint64{
		13930160852258120406,
		11788048577503494824,
		13874630024467741450,
	}, draw(s, 3))
}

func TestMix(t *testing.T) {
	tests := []struct {
		parent, offset uint64
		name           string
		want           uint64
	}{
		{0, 0, "", 9340776605524705130},
		{1, 7, "ai", 14012800939317774294},
		{42, 0, "spawn", 647330509189704751},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Mix(tt.parent, tt.offset, tt.name))
		})
	}
}

func TestStableStream(t *testing.T) {
	s := New(0)
	s.SetGlobalSeed(42)
	first := draw(s, 5)
	s.SetGlobalSeed(42)
	require.Equal(t, first, draw(s, 5))
}

func TestChildDeterminism(t *testing.T) {
	s := New(1)
	s.Push("ai", 7)
	require.Equal(t, "ai", s.CurrentContext())
	require.Equal(t, Mix(1, 7, "ai"), s.State().Seed)
	a := draw(s, 3)
	s.Pop()
	s.Push("ai", 7)
	b := draw(s, 3)
	s.Pop()
	require.Equal(t, a, b)
	require.Equal(t, GlobalContext, s.CurrentContext())
}

func TestSaveRestore(t *testing.T) {
	s := New(100)
	draw(s, 10)
	st := s.State()
	a := draw(s, 5)
	s.RestoreState(st)
	require.Equal(t, a, draw(s, 5))

	// Restoring ahead of the live position fast-forwards.
	fresh := New(100)
	fresh.RestoreState(StreamState{Seed: 100, Draws: 10})
	require.Equal(t, a, draw(fresh, 5))

	// A different seed reseeds.
	fresh.RestoreState(StreamState{Seed: 42, Draws: 1})
	require.Equal(t, uint64(11788048577503494824), fresh.NextU64())
}

func TestPushPopLeavesParentUnchanged(t *testing.T) {
	s := New(9)
	draw(s, 4)
	before := s.State()
	s.Push("loot", 3)
	draw(s, 7)
	s.Pop()
	require.Equal(t, before, s.State())
	require.Equal(t, 1, s.Depth())
}

func TestPopGlobalPanics(t *testing.T) {
	s := New(1)
	require.PanicsWithValue(t, ErrStackUnderflow, func() { s.Pop() })
}

func TestZeroValueSelfHeals(t *testing.T) {
	var s Service
	require.Equal(t, New(0).NextU64(), s.NextU64())
	require.Equal(t, 1, s.Depth())
}

func TestSetGlobalSeedDiscardsStack(t *testing.T) {
	s := New(1)
	s.Push("a", 0)
	s.Push("b", 0)
	s.SetGlobalSeed(2)
	require.Equal(t, 1, s.Depth())
	require.Equal(t, StreamState{Seed: 2}, s.State())
}

func TestNextInt(t *testing.T) {
	s := New(3)
	for i := 0; i < 100; i++ {
		require.Equal(t, 5, s.NextInt(5, 5))
	}
	require.Equal(t, uint64(100), s.State().Draws)

	a, b := New(11), New(11)
	for i := 0; i < 200; i++ {
		x := a.NextInt(-3, 9)
		require.Equal(t, x, b.NextInt(9, -3))
		require.GreaterOrEqual(t, x, -3)
		require.LessOrEqual(t, x, 9)
	}

	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		seen[s.NextInt(0, 2)] = true
	}
	require.Len(t, seen, 3)
}

func TestNextF64(t *testing.T) {
	s := New(77)
	for i := 0; i < 1000; i++ {
		f := s.NextF64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestToUnitHalfOpen(t *testing.T) {
	tests := []struct {
		name string
		in   uint64
		want float64
	}{
		{"zero", 0, 0},
		{"below first step", 1<<11 - 1, 0},
		{"first step", 1 << 11, 0x1p-53},
		{"half", 1 << 63, 0.5},
		{"max", math.MaxUint64, 1 - 0x1p-53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toUnit(tt.in)
			require.Equal(t, tt.want, got)
			require.Less(t, got, 1.0)
		})
	}
}

func TestNamedStreams(t *testing.T) {
	s := New(5)
	s.RegisterNamed("weather", 99)
	s.RegisterNamed("weather", 99)
	st, ok := s.NamedState("weather")
	require.True(t, ok)
	require.Equal(t, StreamState{Seed: 99}, st)

	s.NamedU64("weather")
	mid, _ := s.NamedState("weather")
	a := s.NamedU64("weather")
	s.RestoreNamed("weather", mid)
	require.Equal(t, a, s.NamedU64("weather"))

	// Named draws never touch the stack.
	require.Equal(t, StreamState{Seed: 5}, s.State())

	_, ok = s.NamedState("missing")
	require.False(t, ok)
	s.RestoreNamed("fresh", StreamState{Seed: 42, Draws: 2})
	require.Equal(t, uint64(13874630024467741450), s.NamedU64("fresh"))
}

func TestNamedAutoRegister(t *testing.T) {
	s := New(42)
	require.False(t, s.HasNamed("input"))
	s.NamedInt("input", 0, 1)
	st, ok := s.NamedState("input")
	require.True(t, ok)
	require.Equal(t, StreamState{Seed: Mix(42, 0, "input"), Draws: 1}, st)

	s.SetGlobalSeed(1)
	require.True(t, s.HasNamed("input"))
}
