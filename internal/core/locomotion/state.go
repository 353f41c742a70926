package locomotion

import "fmt"

// State is the externally visible traveler state.
type State uint8

const (
	Moving State = iota
	CanMove
	Suspending
	Stuck
	Ending
)

var stateNames = [...]string{
	Moving:     "moving",
	CanMove:    "can_move",
	Suspending: "suspending",
	Stuck:      "stuck",
	Ending:     "ending",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown traveler state %q", text)
}

// phase is where the move cycle currently is. Only phaseTranslating runs with state Moving.
type phase uint8

const (
	phaseIdle phase = iota
	phaseTranslating
	phaseSettling
	phaseAwaiting
	phaseGravityPause
)
