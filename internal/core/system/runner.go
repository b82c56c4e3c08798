package system

import "fmt"

// Runner executes systems phase by phase each step. Systems sharing a phase
// run in registration order.
type Runner struct {
	phases [phaseCount][]System
	n      int
}

func NewRunner() *Runner { return &Runner{} }

// Register adds s to its phase. It panics on a phase outside the pipeline.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system: %T registered with unknown phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
	r.n++
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return r.n }

// InPhase returns the number of systems registered for p.
func (r *Runner) InPhase(p Phase) int {
	if p < 0 || p >= phaseCount {
		return 0
	}
	return len(r.phases[p])
}

// Tick runs one step of dt seconds through every phase.
func (r *Runner) Tick(dt float64) {
	for p := range r.phases {
		for _, s := range r.phases[p] {
			s.Update(dt)
		}
	}
}
