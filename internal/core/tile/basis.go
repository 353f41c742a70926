package tile

import (
	"fmt"

	"github.com/zeusync/cubewalk/internal/core/axis"
)

// Basis is a tile's placement on the cube: its local forward, right and up axes in world space.
type Basis struct {
	Forward axis.Direction
	Right   axis.Direction
	Up      axis.Direction
}

// IdentityBasis is the world basis.
var IdentityBasis = Basis{Forward: axis.Forward, Right: axis.Right, Up: axis.Up}

// NewBasis derives right as up × forward. Forward and up must be distinct, non-opposite axes.
func NewBasis(forward, up axis.Direction) (Basis, error) {
	if forward.IsZero() || up.IsZero() || !forward.Valid() || !up.Valid() {
		return Basis{}, fmt.Errorf("%w: forward %s, up %s", ErrInvalidBasis, forward, up)
	}
	right := up.Cross(forward)
	if right.IsZero() {
		return Basis{}, fmt.Errorf("%w: forward %s parallel to up %s", ErrInvalidBasis, forward, up)
	}
	return Basis{Forward: forward, Right: right, Up: up}, nil
}

// World returns the world direction of a local side.
func (b Basis) World(s Side) axis.Direction {
	switch s {
	case SideForward:
		return b.Forward
	case SideBack:
		return b.Forward.Negate()
	case SideRight:
		return b.Right
	case SideLeft:
		return b.Right.Negate()
	case SideUp:
		return b.Up
	default:
		return b.Up.Negate()
	}
}

// Relative maps a world direction onto the local side it coincides with.
func (b Basis) Relative(d axis.Direction) (Side, error) {
	switch d {
	case b.Forward:
		return SideForward, nil
	case b.Forward.Negate():
		return SideBack, nil
	case b.Right:
		return SideRight, nil
	case b.Right.Negate():
		return SideLeft, nil
	case b.Up:
		return SideUp, nil
	case b.Up.Negate():
		return SideDown, nil
	}
	return 0, fmt.Errorf("%w: %s matches no local axis of %s", ErrInvalidDirectionVector, d, b)
}

func (b Basis) String() string {
	return fmt.Sprintf("basis(f=%s r=%s u=%s)", b.Forward, b.Right, b.Up)
}
