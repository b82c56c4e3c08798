// Package rng is the reproducible random number service of the simulation.
//
// A Service holds a stack of contexts whose top (the active context) serves
// every draw, plus a map of named streams that live outside the stack. All
// values are a deterministic function of the global seed and the sequence of
// pushes and draws performed against it. A Service is owned by the sim
// thread and is not safe for concurrent use.
package rng

import (
	"errors"
	"math/bits"
)

// GlobalContext is the name of the bottom-most context.
const GlobalContext = "global"

// ErrStackUnderflow is the panic value of Pop on the global context.
var ErrStackUnderflow = errors.New("rng: cannot pop the global context")

// Service is the context-scoped random number service. The zero value is
// usable and behaves as if seeded with 0.
type Service struct {
	globalSeed uint64
	stack      []*streamContext
	named      map[string]*streamContext
	epoch      uint64
}

// New returns a service seeded with seed.
func New(seed uint64) *Service {
	s := &Service{}
	s.SetGlobalSeed(seed)
	return s
}

// SetGlobalSeed resets the stack to a single global context seeded with seed.
// Pushed contexts are discarded; named streams are preserved.
func (s *Service) SetGlobalSeed(seed uint64) {
	s.globalSeed = seed
	s.stack = append(s.stack[:0], newStreamContext(GlobalContext, seed))
	s.epoch++
}

// GlobalSeed returns the seed last passed to SetGlobalSeed.
func (s *Service) GlobalSeed() uint64 { return s.globalSeed }

// active returns the top context, initialising the global one on first use.
func (s *Service) active() *streamContext {
	if len(s.stack) == 0 {
		s.SetGlobalSeed(s.globalSeed)
	}
	return s.stack[len(s.stack)-1]
}

// NextU64 draws the next raw 64-bit value from the active context.
func (s *Service) NextU64() uint64 {
	return s.active().next()
}

// NextF64 draws a float in [0, 1).
func (s *Service) NextF64() float64 {
	return toUnit(s.NextU64())
}

// NextInt draws an integer uniformly from the closed interval [lo, hi].
// Bounds are swapped when lo > hi. Exactly one raw value is consumed.
func (s *Service) NextInt(lo, hi int) int {
	return toRange(s.NextU64(), lo, hi)
}

// Push derives a child seed from the active context and makes the child active.
func (s *Service) Push(name string, offset uint64) {
	parent := s.active()
	s.stack = append(s.stack, newStreamContext(name, Mix(parent.seed, offset, name)))
}

// Pop discards the active context. Popping the global context is a
// programmer error and panics with ErrStackUnderflow.
func (s *Service) Pop() {
	if len(s.stack) <= 1 {
		panic(ErrStackUnderflow)
	}
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
}

// Depth returns the number of contexts on the stack, global included.
func (s *Service) Depth() int {
	s.active()
	return len(s.stack)
}

// CurrentContext returns the name of the active context.
func (s *Service) CurrentContext() string {
	return s.active().name
}

// State returns the active context's stream state.
func (s *Service) State() StreamState {
	return s.active().state()
}

// RestoreState repositions the active context at st.
func (s *Service) RestoreState(st StreamState) {
	s.active().restore(st)
}

// toUnit keeps the top 53 bits so the result is exact and never reaches 1.
func toUnit(v uint64) float64 {
	return float64(v>>11) * 0x1p-53
}

// toRange maps v onto [lo, hi] with a multiply-shift, which needs no
// rejection loop and so always consumes a single draw.
func toRange(v uint64, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	span := uint64(hi-lo) + 1
	if span == 0 {
		return int(v)
	}
	h, _ := bits.Mul64(v, span)
	return lo + int(h)
}
