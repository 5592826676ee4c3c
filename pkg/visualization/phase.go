package visualization

import "fmt"

// Phase is the owner of node positions at a given tick
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSeeding
	PhaseSimulating
	PhaseAnimating
	PhaseConverged
)

var phaseNames = [...]string{"idle", "seeding", "simulating", "animating", "converged"}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// transitions lists the phases reachable from each phase
var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseSeeding, PhaseSimulating, PhaseConverged},
	PhaseSeeding:    {PhaseSimulating, PhaseIdle},
	PhaseSimulating: {PhaseAnimating, PhaseConverged, PhaseSeeding, PhaseIdle},
	PhaseAnimating:  {PhaseSimulating, PhaseConverged, PhaseSeeding, PhaseIdle},
	PhaseConverged:  {PhaseSimulating, PhaseAnimating, PhaseSeeding, PhaseIdle},
}

// CanTransition reports whether the state machine allows from -> to.
// Staying in the same phase is always allowed.
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
