package tile

import (
	"fmt"
	"strings"
)

// Function classifies how a tile treats a traveler.
type Function uint8

const (
	NoFunction Function = iota // passthrough cell without a floor
	Plain
	Turn
	Ramp
	Wall
	Custom
)

var functionNames = [...]string{
	NoFunction: "none",
	Plain:      "plain",
	Turn:       "turn",
	Ramp:       "ramp",
	Wall:       "wall",
	Custom:     "custom",
}

func (f Function) String() string {
	if int(f) < len(functionNames) {
		return functionNames[f]
	}
	return fmt.Sprintf("function(%d)", f)
}

func (f Function) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Function) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, name := range functionNames {
		if name == s {
			*f = Function(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tile function %q", s)
}

// TurnTarget selects which local axis a Turn tile redirects onto.
type TurnTarget uint8

const (
	TurnForward TurnTarget = iota
	TurnRight
	TurnBack
	TurnLeft
)

var turnNames = [...]string{
	TurnForward: "forward",
	TurnRight:   "right",
	TurnBack:    "back",
	TurnLeft:    "left",
}

func (t TurnTarget) String() string {
	if int(t) < len(turnNames) {
		return turnNames[t]
	}
	return fmt.Sprintf("turn(%d)", t)
}

func (t TurnTarget) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TurnTarget) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, name := range turnNames {
		if name == s {
			*t = TurnTarget(i)
			return nil
		}
	}
	return fmt.Errorf("unknown turn target %q", s)
}

// ReachEvent is what happens once a traveler settles on the tile.
type ReachEvent uint8

const (
	ReachNone ReachEvent = iota
	ReachHazard
	ReachGoal
)

var reachNames = [...]string{
	ReachNone:   "none",
	ReachHazard: "hazard",
	ReachGoal:   "goal",
}

func (r ReachEvent) String() string {
	if int(r) < len(reachNames) {
		return reachNames[r]
	}
	return fmt.Sprintf("reach(%d)", r)
}

func (r ReachEvent) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ReachEvent) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for i, name := range reachNames {
		if name == s {
			*r = ReachEvent(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reach event %q", s)
}

// Side is a direction relative to a tile's own basis.
type Side uint8

const (
	SideForward Side = iota
	SideBack
	SideRight
	SideLeft
	SideUp
	SideDown
)

var sideNames = [...]string{
	SideForward: "forward",
	SideBack:    "back",
	SideRight:   "right",
	SideLeft:    "left",
	SideUp:      "up",
	SideDown:    "down",
}

func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return fmt.Sprintf("side(%d)", s)
}

// ParseSide maps an authoring name onto a Side.
func ParseSide(name string) (Side, error) {
	n := strings.ToLower(name)
	for i, s := range sideNames {
		if s == n {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", name)
}

// Access holds one passability flag per side.
type Access [6]bool

// FullAccess opens every side.
func FullAccess() Access { return Access{true, true, true, true, true, true} }

// HorizontalAccess opens the four horizontal sides and closes up and down.
func HorizontalAccess() Access { return Access{true, true, true, true, false, false} }

func (a Access) Allows(s Side) bool { return a[s] }

// DefaultAccess is the access table a freshly authored tile of function f starts with.
func DefaultAccess(f Function) Access {
	switch f {
	case Plain, NoFunction:
		return FullAccess()
	case Wall, Turn:
		return HorizontalAccess()
	default:
		return Access{}
	}
}
