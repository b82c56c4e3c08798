// Package input defines the per-step player input record and its sources.
package input

// Axes is the number of boolean axes in a Snapshot.
const Axes = 12

// Snapshot is the fixed-shape player input for one simulation step.
// It holds no pointers so it copies and serializes by value.
type Snapshot struct {
	Forward     bool
	Back        bool
	Up          bool
	Down        bool
	StrafeLeft  bool
	StrafeRight bool
	Sprint      bool
	Crouch      bool
	Slide       bool
	Boost       bool
	Left        bool
	Right       bool
	CameraYaw   float64
}

// Bools returns the axes in trace order.
func (s Snapshot) Bools() [Axes]bool {
	return [Axes]bool{
		s.Forward, s.Back, s.Up, s.Down, s.StrafeLeft, s.StrafeRight,
		s.Sprint, s.Crouch, s.Slide, s.Boost, s.Left, s.Right,
	}
}

// FromBools rebuilds a snapshot from axes in trace order.
func FromBools(b [Axes]bool, yaw float64) Snapshot {
	return Snapshot{
		Forward: b[0], Back: b[1], Up: b[2], Down: b[3],
		StrafeLeft: b[4], StrafeRight: b[5],
		Sprint: b[6], Crouch: b[7], Slide: b[8], Boost: b[9],
		Left: b[10], Right: b[11],
		CameraYaw: yaw,
	}
}

// Source produces the live input of a step.
type Source interface {
	Gather(step uint64) Snapshot
}

// Static always returns the same snapshot.
type Static struct {
	Snapshot Snapshot
}

func (s Static) Gather(uint64) Snapshot { return s.Snapshot }
