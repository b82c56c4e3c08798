package rng

// Scope owns one Push and undoes it on Close. Close is idempotent and is
// skipped when the global seed was reset after the push.
//
//	sc := svc.Scoped("spawn", 0)
//	defer sc.Close()
type Scope struct {
	svc    *Service
	ctx    *streamContext
	epoch  uint64
	depth  int
	closed bool
}

// Scoped pushes a context and returns the scope that pops it.
func (s *Service) Scoped(name string, offset uint64) *Scope {
	s.Push(name, offset)
	return &Scope{svc: s, ctx: s.stack[len(s.stack)-1], epoch: s.epoch, depth: len(s.stack)}
}

// Close pops the scope's context together with anything pushed above it
// that was not popped. Nothing is popped once the scope's own context has
// left the stack.
func (sc *Scope) Close() {
	if sc.closed {
		return
	}
	sc.closed = true
	s := sc.svc
	if s.epoch != sc.epoch || len(s.stack) < sc.depth || s.stack[sc.depth-1] != sc.ctx {
		return
	}
	for len(s.stack) >= sc.depth {
		s.Pop()
	}
}

// With runs fn inside a pushed context. The context is popped on every exit
// path, panics included.
func (s *Service) With(name string, offset uint64, fn func()) {
	sc := s.Scoped(name, offset)
	defer sc.Close()
	fn()
}
