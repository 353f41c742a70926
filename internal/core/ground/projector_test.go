package ground

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/grid"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

func TestProjectHitsFloor(t *testing.T) {
	g := grid.New(1).MustAdd(
		tile.New(tile.Cell{0, 0, 0}, tile.Plain),
		tile.New(tile.Cell{0, -1, 0}, tile.Wall),
	)
	p := NewProjector(g, nil)

	got := p.Project(mgl64.Vec3{0, 0, 0}, axis.Down)
	assert.InDelta(t, -0.5, got.Y(), 1e-9)
	assert.True(t, p.Marker().Grounded())
}

func TestProjectFollowsGravity(t *testing.T) {
	g := grid.New(1).MustAdd(
		tile.New(tile.Cell{1, 0, 0}, tile.Wall, tile.WithSide(tile.SideLeft, false)),
		tile.New(tile.Cell{0, -1, 0}, tile.Wall),
	)
	p := NewProjector(g, nil)

	got := p.Project(mgl64.Vec3{0, 0, 0}, axis.Right)
	assert.InDelta(t, 0.5, got.X(), 1e-9)
	assert.True(t, p.Marker().Grounded())

	// a wall open on the side facing the traveler cannot carry it
	g = grid.New(1).MustAdd(tile.New(tile.Cell{1, 0, 0}, tile.Wall))
	p = NewProjector(g, nil)
	got = p.Project(mgl64.Vec3{0, 0, 0}, axis.Right)
	assert.InDelta(t, 0.5, got.X(), 1e-9)
	assert.False(t, p.Marker().Grounded())
}

func TestProjectIgnoresOccupiedTurnTile(t *testing.T) {
	g := grid.New(1).MustAdd(
		tile.New(tile.Cell{0, 0, 0}, tile.Turn, tile.WithTurn(tile.TurnRight)),
		tile.New(tile.Cell{0, -1, 0}, tile.Wall),
	)
	p := NewProjector(g, nil)

	got := p.Project(mgl64.Vec3{0, 0, 0}, axis.Down)
	assert.InDelta(t, -0.5, got.Y(), 1e-9)
	assert.True(t, p.Marker().Grounded())

	// halfway onto the turn tile from its neighbour
	got = p.Project(mgl64.Vec3{0, 0, -0.5}, axis.Down)
	assert.InDelta(t, -0.5, got.Y(), 1e-9)
}

func TestProjectMissAssumesFreeFall(t *testing.T) {
	g := grid.New(2).MustAdd(tile.New(tile.Cell{0, 0, 0}, tile.NoFunction))
	p := NewProjector(g, NewMarker(mgl64.Vec3{9, 9, 9}))

	got := p.Project(mgl64.Vec3{0, 0, 0}, axis.Down)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, got)
	assert.False(t, p.Marker().Grounded())
}

func TestRotatorReachesTarget(t *testing.T) {
	m := NewMarker(mgl64.Vec3{})
	r := NewRotator(m, 0.5)
	target := physics.LookRotation(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})

	r.Start(target)
	require.True(t, r.Active())

	steps := 0
	for r.Step(0.1) {
		steps++
		require.Less(t, steps, 100)
	}
	assert.False(t, r.Active())
	assert.InDelta(t, 0, physics.Angle(m.Rotation(), target), 1e-9)
	assert.False(t, r.Step(0.1))
}
