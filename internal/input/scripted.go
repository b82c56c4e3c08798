package input

import "math"

// StreamName is the named RNG stream scripted input draws from.
const StreamName = "input"

// Random is the slice of the rng service used by Scripted.
type Random interface {
	NamedU64(name string) uint64
	NamedF64(name string) float64
}

// Scripted synthesizes a wandering pilot from the "input" named stream.
// Named streams sit outside the context stack, so scripted input never
// shifts the draws seen by behavior trees.
type Scripted struct {
	rng  Random
	yaw  float64
	hold uint64 // steps left on the current key mask
	keys uint64
}

func NewScripted(r Random) *Scripted {
	return &Scripted{rng: r}
}

// Gather holds a key mask for a random 10..41 steps, then redraws it, and
// drifts the camera a little every step.
func (s *Scripted) Gather(uint64) Snapshot {
	if s.hold == 0 {
		v := s.rng.NamedU64(StreamName)
		s.keys = v & 0xfff
		s.hold = 10 + (v>>12)%32
	}
	s.hold--
	s.yaw += (s.rng.NamedF64(StreamName) - 0.5) * 0.1
	s.yaw = math.Remainder(s.yaw, 2*math.Pi)

	var b [Axes]bool
	for i := range b {
		b[i] = s.keys&(1<<i) != 0
	}
	// Opposing keys cancel out; keep the pilot moving.
	b[1] = b[1] && !b[0]
	b[3] = b[3] && !b[2]
	b[5] = b[5] && !b[4]
	return FromBools(b, s.yaw)
}
