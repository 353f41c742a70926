package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

var (
	// ErrLocatorMiss means the traveler is not resting inside any tile: an authoring defect.
	ErrLocatorMiss   = errors.New("no tile under traveler")
	ErrDuplicateCell = errors.New("cell already holds a tile")
)

// probeReach is how far ahead, in tile lengths, Locate starts its probe.
const probeReach = 0.55

// Filter narrows which tiles a probe can hit.
type Filter func(*tile.Tile) bool

// Any accepts every tile.
func Any(*tile.Tile) bool { return true }

// Supporting accepts tiles that can carry a traveler pulled along gravity.
func Supporting(gravity axis.Direction) Filter {
	return func(t *tile.Tile) bool { return t.Supports(gravity) }
}

// Outside wraps f so that tiles of edge length size whose box contains p, faces
// included, are rejected.
func Outside(p mgl64.Vec3, size float64, f Filter) Filter {
	if f == nil {
		f = Any
	}
	return func(t *tile.Tile) bool {
		return !physics.CubeAt(t.Position(size), size).Contains(p) && f(t)
	}
}

// Hit describes the first tile a linecast entered.
type Hit struct {
	Tile  *tile.Tile
	Point mgl64.Vec3
	// Fraction is the segment parameter of Point in [0, 1].
	Fraction float64
}

// Grid is the cube's tile grid and the surface locator over it. Lookups are read-only
// and safe for concurrent use; tiles are added while a level is being built.
type Grid struct {
	size  float64
	tiles *index
}

// New creates an empty grid whose tiles have edge length size.
func New(size float64) *Grid {
	if size <= 0 {
		size = 1
	}
	return &Grid{size: size, tiles: newIndex(defaultShardCount)}
}

// TileLength is the edge length of one tile.
func (g *Grid) TileLength() float64 { return g.size }

// Add places t in the grid.
func (g *Grid) Add(t *tile.Tile) error {
	if _, ok := g.tiles.get(t.Cell()); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCell, t.Cell())
	}
	g.tiles.put(t)
	return nil
}

// MustAdd is Add for hand-built grids in tests and demos.
func (g *Grid) MustAdd(tiles ...*tile.Tile) *Grid {
	for _, t := range tiles {
		if err := g.Add(t); err != nil {
			panic(err)
		}
	}
	return g
}

func (g *Grid) Len() int { return g.tiles.len() }

// At returns the tile stored at cell c.
func (g *Grid) At(c tile.Cell) (*tile.Tile, bool) { return g.tiles.get(c) }

// Tiles returns every tile ordered by cell, for deterministic iteration.
func (g *Grid) Tiles() []*tile.Tile {
	out := make([]*tile.Tile, 0, g.Len())
	g.tiles.each(func(t *tile.Tile) { out = append(out, t) })
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Cell(), out[j].Cell()
		for k := 0; k < 3; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

// PositionOf is the world centre of t.
func (g *Grid) PositionOf(t *tile.Tile) mgl64.Vec3 { return t.Position(g.size) }

// Locate finds the tile occupied by a traveler at position facing forward. It probes from
// just past the face shared with the tile ahead back to the position; the tile the probe
// starts in is skipped, so the first tile entered is the one containing the position.
func (g *Grid) Locate(position, forward mgl64.Vec3) (*tile.Tile, error) {
	f := axis.FromVector(forward)
	if f.IsZero() {
		f = axis.Forward
	}
	from := position.Add(f.Vector().Mul(g.size * probeReach))
	hit, ok := g.Linecast(from, position, Any)
	if !ok {
		return nil, fmt.Errorf("%w at %v", ErrLocatorMiss, position)
	}
	return hit.Tile, nil
}

// FindAdjacent returns the tile one tile length from position along d.
func (g *Grid) FindAdjacent(position mgl64.Vec3, d axis.Direction) (*tile.Tile, bool) {
	if d.IsZero() {
		return nil, false
	}
	return g.tiles.get(tile.CellOf(position, g.size).Step(d))
}

// Linecast walks the cells crossed by the segment from -> to and returns the first tile
// accepted by filter that the segment enters. Tiles the segment starts inside are not reported.
func (g *Grid) Linecast(from, to mgl64.Vec3, filter Filter) (Hit, bool) {
	if filter == nil {
		filter = Any
	}
	seg := physics.Segment{From: from, To: to}

	for _, c := range g.traverse(seg) {
		t, ok := g.tiles.get(c)
		if !ok || !filter(t) {
			continue
		}
		enter, _, ok := physics.IntersectSegmentBox(seg, physics.CubeAt(c.Center(g.size), g.size))
		if !ok || enter < 0 {
			continue
		}
		return Hit{Tile: t, Point: seg.At(enter), Fraction: enter}, true
	}
	return Hit{}, false
}

// traverse lists the cells crossed by seg in order (Amanatides-Woo voxel walk).
func (g *Grid) traverse(seg physics.Segment) []tile.Cell {
	cur := tile.CellOf(seg.From, g.size)
	last := tile.CellOf(seg.To, g.size)
	cells := []tile.Cell{cur}
	if cur == last {
		return cells
	}

	d := seg.Direction()
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case d[i] > 0:
			step[i] = 1
			boundary := (float64(cur[i]) + 0.5) * g.size
			tMax[i] = (boundary - seg.From[i]) / d[i]
			tDelta[i] = g.size / d[i]
		case d[i] < 0:
			step[i] = -1
			boundary := (float64(cur[i]) - 0.5) * g.size
			tMax[i] = (boundary - seg.From[i]) / d[i]
			tDelta[i] = -g.size / d[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	// bounded by the number of cell boundaries the segment can cross
	limit := 3
	for i := 0; i < 3; i++ {
		limit += int(math.Abs(float64(last[i]-cur[i])))
	}
	for n := 0; n < limit && cur != last; n++ {
		axisIdx := 0
		if tMax[1] < tMax[axisIdx] {
			axisIdx = 1
		}
		if tMax[2] < tMax[axisIdx] {
			axisIdx = 2
		}
		if tMax[axisIdx] > 1 {
			break
		}
		cur[axisIdx] += step[axisIdx]
		tMax[axisIdx] += tDelta[axisIdx]
		cells = append(cells, cur)
	}
	return cells
}
