package axis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidDirectionVector is returned when a vector does not lie on one of the six principal axes.
var ErrInvalidDirectionVector = errors.New("vector is not axis aligned")

// Direction is one of the six principal directions of the world basis, or Zero.
// At most one component is non-zero. Zero doubles as the "blocked" answer of tile resolution.
type Direction struct {
	x, y, z int8
}

var (
	Zero    = Direction{}
	Right   = Direction{x: 1}
	Left    = Direction{x: -1}
	Up      = Direction{y: 1}
	Down    = Direction{y: -1}
	Forward = Direction{z: 1}
	Back    = Direction{z: -1}
)

// All lists the six non-zero directions.
var All = [6]Direction{Right, Left, Up, Down, Forward, Back}

// Horizontal lists the directions without a Y component.
var Horizontal = [4]Direction{Right, Left, Forward, Back}

// FromVector snaps v to the axis of its largest-magnitude component.
// The zero vector maps to Zero. Ties resolve in X, Y, Z order.
func FromVector(v mgl64.Vec3) Direction {
	ax, ay, az := math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return Zero
	case ax >= ay && ax >= az:
		return Direction{x: sign(v[0])}
	case ay >= az:
		return Direction{y: sign(v[1])}
	default:
		return Direction{z: sign(v[2])}
	}
}

// FromAxisVector converts v strictly: v must have exactly one component whose magnitude
// exceeds epsilon. The zero vector maps to Zero.
func FromAxisVector(v mgl64.Vec3) (Direction, error) {
	nonZero := 0
	for _, c := range v {
		if !mgl64.FloatEqualThreshold(c, 0, mgl64.Epsilon) {
			nonZero++
		}
	}
	if nonZero > 1 {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidDirectionVector, v)
	}
	return FromVector(v), nil
}

func sign(f float64) int8 {
	if f < 0 {
		return -1
	}
	return 1
}

func (d Direction) X() int { return int(d.x) }
func (d Direction) Y() int { return int(d.y) }
func (d Direction) Z() int { return int(d.z) }

// Vector returns the unit vector of d, or the zero vector for Zero.
func (d Direction) Vector() mgl64.Vec3 {
	return mgl64.Vec3{float64(d.x), float64(d.y), float64(d.z)}
}

func (d Direction) Negate() Direction {
	return Direction{x: -d.x, y: -d.y, z: -d.z}
}

func (d Direction) Equal(other Direction) bool { return d == other }

func (d Direction) IsZero() bool { return d == Zero }

// HasVertical reports whether d moves along Y.
func (d Direction) HasVertical() bool { return d.y != 0 }

// Cross returns d × other, snapped back onto an axis.
func (d Direction) Cross(other Direction) Direction {
	return FromVector(d.Vector().Cross(other.Vector()))
}

// Valid reports whether the invariant holds: at most one non-zero unit component.
func (d Direction) Valid() bool {
	n := 0
	for _, c := range [3]int8{d.x, d.y, d.z} {
		switch c {
		case 0:
		case 1, -1:
			n++
		default:
			return false
		}
	}
	return n <= 1
}

var names = map[Direction]string{
	Zero:    "zero",
	Right:   "+x",
	Left:    "-x",
	Up:      "+y",
	Down:    "-y",
	Forward: "+z",
	Back:    "-z",
}

var aliases = map[string]Direction{
	"zero": Zero, "none": Zero, "": Zero,
	"+x": Right, "x": Right, "right": Right,
	"-x": Left, "left": Left,
	"+y": Up, "y": Up, "up": Up,
	"-y": Down, "down": Down,
	"+z": Forward, "z": Forward, "forward": Forward,
	"-z": Back, "back": Back,
}

func (d Direction) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return fmt.Sprintf("invalid(%d,%d,%d)", d.x, d.y, d.z)
}

// Parse accepts "+x", "-z", "up", "forward", "zero" and similar spellings.
func Parse(s string) (Direction, error) {
	d, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidDirectionVector, s)
	}
	return d, nil
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
