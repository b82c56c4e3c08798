package timestep

import (
	"fmt"
	"strings"
)

// Mode selects how wall-clock time becomes simulation steps.
type Mode uint8

const (
	// Variable runs one step per frame of duration smoothedΔt.
	Variable Mode = iota
	// Fixed drains an accumulator fed with smoothedΔt in fixed-size steps.
	Fixed
	// SemiFixed drains an accumulator fed with the scaled delta.
	SemiFixed
)

var modeNames = [...]string{
	Variable:  "variable",
	Fixed:     "fixed",
	SemiFixed: "semifixed",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode accepts the names printed by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown time mode %q", s)
}
