package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedClose(t *testing.T) {
	s := New(8)
	sc := s.Scoped("spawn", 0)
	require.Equal(t, 2, s.Depth())
	require.Equal(t, "spawn", s.CurrentContext())
	sc.Close()
	sc.Close()
	require.Equal(t, 1, s.Depth())
}

func TestScopedTruncatesLeakedContexts(t *testing.T) {
	s := New(8)
	sc := s.Scoped("outer", 0)
	s.Push("inner", 1)
	s.Push("inner2", 2)
	sc.Close()
	require.Equal(t, 1, s.Depth())
}

func TestScopedSkippedAfterReset(t *testing.T) {
	s := New(8)
	sc := s.Scoped("outer", 0)
	s.SetGlobalSeed(9)
	s.Push("other", 0)
	sc.Close()
	require.Equal(t, 2, s.Depth())
	require.Equal(t, "other", s.CurrentContext())
}

func TestScopedSkippedWhenAlreadyPopped(t *testing.T) {
	s := New(8)
	sc := s.Scoped("outer", 0)
	s.Pop()
	sc.Close()
	require.Equal(t, 1, s.Depth())
}

func TestScopedLeavesReplacedContext(t *testing.T) {
	s := New(8)
	sc := s.Scoped("outer", 0)
	s.Pop()
	s.Push("other", 0)
	sc.Close()
	require.Equal(t, 2, s.Depth())
	require.Equal(t, "other", s.CurrentContext())
	s.Pop()
	require.Equal(t, 1, s.Depth())
}

func TestWithPopsOnPanic(t *testing.T) {
	s := New(8)
	require.Panics(t, func() {
		s.With("boom", 0, func() {
			require.Equal(t, "boom", s.CurrentContext())
			panic("fail")
		})
	})
	require.Equal(t, 1, s.Depth())

	var got uint64
	s.With("spawn", 4, func() { got = s.NextU64() })
	require.Equal(t, StreamState{Seed: 8}, s.State())

	want := New(Mix(8, 4, "spawn")).NextU64()
	require.Equal(t, want, got)
}
