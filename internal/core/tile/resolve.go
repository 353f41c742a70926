package tile

import (
	"github.com/zeusync/cubewalk/internal/core/axis"
)

// Entry is the answer a tile gives when a traveler is about to move onto it.
type Entry struct {
	Direction axis.Direction
	// Changed is set when the tile imposes a new heading (turns) or refuses the traveler.
	Changed bool
}

// Blocked reports whether the traveler may not enter.
func (e Entry) Blocked() bool { return e.Direction.IsZero() }

// ResolveContinue answers whether a traveler already moving along in may keep going.
// The lookup uses in itself as the tile-relative side. A blocked side yields axis.Zero;
// heading against a ramp's forward turns the move into a climb (axis.Up).
func (t *Tile) ResolveContinue(in axis.Direction) (axis.Direction, error) {
	side, err := t.basis.Relative(in)
	if err != nil {
		return axis.Zero, err
	}
	if !t.access.Allows(side) {
		return axis.Zero, nil
	}
	if t.function == Ramp && side == SideBack {
		return axis.Up, nil
	}
	return in, nil
}

// ResolveEntry answers what happens when a traveler arrives moving along in.
// The lookup uses the reverse of in: the side the traveler comes from.
// Unlike ResolveContinue this may redirect (turns, ramps, missing floors).
func (t *Tile) ResolveEntry(in axis.Direction) (Entry, error) {
	side, err := t.basis.Relative(in.Negate())
	if err != nil {
		return Entry{}, err
	}
	if !t.access.Allows(side) {
		return Entry{Direction: axis.Zero, Changed: true}, nil
	}

	switch t.function {
	case Ramp:
		switch in {
		case t.basis.Forward:
			return Entry{Direction: t.basis.Up.Negate()}, nil
		case t.basis.Up.Negate():
			return Entry{Direction: t.basis.Forward.Negate()}, nil
		}
		return Entry{Direction: in}, nil
	case Turn:
		return Entry{Direction: t.TurnVector(), Changed: true}, nil
	case NoFunction, Custom:
		if in != axis.Up {
			return Entry{Direction: axis.Down}, nil
		}
	}
	return Entry{Direction: in}, nil
}
