package rng

// RegisterNamed creates (or overwrites) the named stream name seeded with seed.
func (s *Service) RegisterNamed(name string, seed uint64) {
	if s.named == nil {
		s.named = make(map[string]*streamContext)
	}
	s.named[name] = newStreamContext(name, seed)
}

// NamedState returns the state of a named stream; ok is false when the
// stream has not been registered.
func (s *Service) NamedState(name string) (st StreamState, ok bool) {
	c, ok := s.named[name]
	if !ok {
		return StreamState{}, false
	}
	return c.state(), true
}

// RestoreNamed repositions a named stream at st, creating it if missing.
func (s *Service) RestoreNamed(name string, st StreamState) {
	c, ok := s.named[name]
	if !ok {
		s.RegisterNamed(name, st.Seed)
		c = s.named[name]
	}
	c.restore(st)
}

// HasNamed reports whether name is registered.
func (s *Service) HasNamed(name string) bool {
	_, ok := s.named[name]
	return ok
}

// NamedU64 draws from a named stream. An unknown name is registered on the
// fly with a seed mixed from the global seed.
func (s *Service) NamedU64(name string) uint64 {
	return s.namedStream(name).next()
}

// NamedF64 draws a float in [0, 1) from a named stream.
func (s *Service) NamedF64(name string) float64 {
	return toUnit(s.NamedU64(name))
}

// NamedInt draws an integer in [lo, hi] from a named stream.
func (s *Service) NamedInt(name string, lo, hi int) int {
	return toRange(s.NamedU64(name), lo, hi)
}

func (s *Service) namedStream(name string) *streamContext {
	c, ok := s.named[name]
	if !ok {
		s.RegisterNamed(name, Mix(s.globalSeed, 0, name))
		c = s.named[name]
	}
	return c
}
