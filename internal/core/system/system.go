package system

// Phase defines execution ordering within a single simulation step.
type Phase int

const (
	PhaseEvents     Phase = iota // 0: dispatch last step's events
	PhaseInput                   // 1: route step input to controllers
	PhaseCapture                 // 2: record pre-tick RNG + entity state
	PhaseBehavior                // 3: behavior tree tick (only RNG consumer)
	PhaseNavigation              // 4: steer towards targets
	PhasePhysics                 // 5: integrate positions
	PhaseCleanup                 // 6: destroy queued entities

	phaseCount
)

var phaseNames = [...]string{"events", "input", "capture", "behavior", "navigation", "physics", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every simulation system implements.
// dt is the step duration in seconds.
type System interface {
	Phase() Phase
	Update(dt float64)
}
