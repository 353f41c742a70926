package tile

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
)

// Cell is an integer coordinate in the cube's tile grid.
type Cell [3]int

// CellOf returns the cell whose box contains p for tiles of edge length size.
func CellOf(p mgl64.Vec3, size float64) Cell {
	var c Cell
	for i := range c {
		c[i] = int(math.Floor(p[i]/size + 0.5))
	}
	return c
}

// Step returns the neighbouring cell along d.
func (c Cell) Step(d axis.Direction) Cell {
	return Cell{c[0] + d.X(), c[1] + d.Y(), c[2] + d.Z()}
}

// Center is the world position of the cell's midpoint.
func (c Cell) Center(size float64) mgl64.Vec3 {
	return mgl64.Vec3{float64(c[0]) * size, float64(c[1]) * size, float64(c[2]) * size}
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2]) }

// Listener is notified when a traveler settles on a tile.
type Listener interface {
	OnTileEntered(t *Tile)
}

// Tile is one unit cell of the cube surface. Tiles are immutable once built;
// every resolution is a pure function of their fields.
type Tile struct {
	name     string
	cell     Cell
	function Function
	turn     TurnTarget
	access   Access
	basis    Basis
	reach    ReachEvent
}

// Option customises a tile at construction.
type Option func(*Tile)

func WithName(name string) Option { return func(t *Tile) { t.name = name } }

func WithTurn(target TurnTarget) Option { return func(t *Tile) { t.turn = target } }

func WithBasis(b Basis) Option { return func(t *Tile) { t.basis = b } }

func WithReach(r ReachEvent) Option { return func(t *Tile) { t.reach = r } }

// WithAccess replaces the whole access table.
func WithAccess(a Access) Option { return func(t *Tile) { t.access = a } }

// WithSide overrides a single access flag on top of the function defaults.
func WithSide(s Side, open bool) Option { return func(t *Tile) { t.access[s] = open } }

// New builds a tile at cell with the default access table of f, then applies opts in order.
func New(cell Cell, f Function, opts ...Option) *Tile {
	t := &Tile{
		cell:     cell,
		function: f,
		access:   DefaultAccess(f),
		basis:    IdentityBasis,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tile) Name() string           { return t.name }
func (t *Tile) Cell() Cell             { return t.cell }
func (t *Tile) Function() Function     { return t.function }
func (t *Tile) TurnTarget() TurnTarget { return t.turn }
func (t *Tile) Access() Access         { return t.access }
func (t *Tile) Basis() Basis           { return t.basis }
func (t *Tile) ReachEvent() ReachEvent { return t.reach }

// Position is the tile's world centre for tiles of edge length size.
func (t *Tile) Position(size float64) mgl64.Vec3 { return t.cell.Center(size) }

// Supports reports whether the tile can carry a traveler pulled along gravity:
// the side facing against gravity must be closed.
func (t *Tile) Supports(gravity axis.Direction) bool {
	side, err := t.basis.Relative(gravity.Negate())
	if err != nil {
		return false
	}
	return !t.access[side]
}

// TurnVector is the world direction a Turn tile sends travelers along.
func (t *Tile) TurnVector() axis.Direction {
	switch t.turn {
	case TurnBack:
		return t.basis.Forward.Negate()
	case TurnLeft:
		return t.basis.Right.Negate()
	case TurnRight:
		return t.basis.Right
	default:
		return t.basis.Forward
	}
}

// OnEntered forwards the arrival to l exactly once.
func (t *Tile) OnEntered(l Listener) {
	if l != nil {
		l.OnTileEntered(t)
	}
}

func (t *Tile) String() string {
	label := t.name
	if label == "" {
		label = t.cell.String()
	}
	return fmt.Sprintf("%s[%s]", label, t.function)
}
