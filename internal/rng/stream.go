package rng

import "github.com/seehuhn/mt19937"

// StreamState fully describes the position of one generator: reseeding with
// Seed and discarding Draws outputs reproduces it.
type StreamState struct {
	Seed  uint64
	Draws uint64
}

// streamContext owns one live mt19937-64 generator plus its draw count.
type streamContext struct {
	name   string
	seed   uint64
	draws  uint64
	engine *mt19937.MT19937
}

func newStreamContext(name string, seed uint64) *streamContext {
	c := &streamContext{name: name, engine: mt19937.New()}
	c.reseed(seed)
	return c
}

func (c *streamContext) reseed(seed uint64) {
	c.seed = seed
	c.draws = 0
	c.engine.Seed(int64(seed))
}

func (c *streamContext) next() uint64 {
	c.draws++
	return c.engine.Uint64()
}

func (c *streamContext) state() StreamState {
	return StreamState{Seed: c.seed, Draws: c.draws}
}

// restore repositions the generator at st. When st lies ahead on the same
// seed only the missing outputs are discarded; the result is bit-identical
// to a full reseed and discard.
func (c *streamContext) restore(st StreamState) {
	if st.Seed != c.seed || st.Draws < c.draws {
		c.reseed(st.Seed)
	}
	for c.draws < st.Draws {
		c.next()
	}
}
