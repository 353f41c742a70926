package tile

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/axis"
)

func TestDefaultAccessPerFunction(t *testing.T) {
	assert.Equal(t, FullAccess(), New(Cell{}, Plain).Access())
	assert.Equal(t, FullAccess(), New(Cell{}, NoFunction).Access())
	assert.Equal(t, HorizontalAccess(), New(Cell{}, Wall).Access())
	assert.Equal(t, HorizontalAccess(), New(Cell{}, Turn).Access())
	assert.Equal(t, Access{}, New(Cell{}, Custom).Access())

	wall := New(Cell{}, Wall, WithSide(SideBack, false))
	assert.False(t, wall.Access().Allows(SideBack))
	assert.True(t, wall.Access().Allows(SideForward))
}

func TestPlainTilePassesEverythingThrough(t *testing.T) {
	plain := New(Cell{}, Plain)
	for _, d := range axis.All {
		out, err := plain.ResolveContinue(d)
		require.NoError(t, err)
		assert.Equal(t, d, out, d.String())

		if d == axis.Up {
			continue
		}
		entry, err := plain.ResolveEntry(d)
		require.NoError(t, err)
		assert.Equal(t, Entry{Direction: d}, entry, d.String())
	}
}

func TestWallTileBlocksVertical(t *testing.T) {
	wall := New(Cell{}, Wall)

	for _, d := range []axis.Direction{axis.Up, axis.Down} {
		out, err := wall.ResolveContinue(d)
		require.NoError(t, err)
		assert.Equal(t, axis.Zero, out, d.String())
	}
	for _, d := range axis.Horizontal {
		out, err := wall.ResolveContinue(d)
		require.NoError(t, err)
		assert.Equal(t, d, out, d.String())
	}

	entry, err := wall.ResolveEntry(axis.Down)
	require.NoError(t, err)
	assert.True(t, entry.Blocked())
	assert.True(t, entry.Changed)
	assert.True(t, wall.Supports(axis.Down))
	assert.False(t, wall.Supports(axis.Right))
}

func TestTurnTileRedirectsOnEntry(t *testing.T) {
	basis, err := NewBasis(axis.Right, axis.Up)
	require.NoError(t, err)
	turn := New(Cell{}, Turn, WithTurn(TurnBack), WithBasis(basis))

	for _, d := range axis.Horizontal {
		entry, err := turn.ResolveEntry(d)
		require.NoError(t, err)
		assert.Equal(t, Entry{Direction: axis.Left, Changed: true}, entry, d.String())
	}

	// continuing never redirects
	out, err := turn.ResolveContinue(axis.Forward)
	require.NoError(t, err)
	assert.Equal(t, axis.Forward, out)
}

func TestTurnTileRespectsAccess(t *testing.T) {
	turn := New(Cell{}, Turn, WithTurn(TurnLeft), WithSide(SideBack, false))

	entry, err := turn.ResolveEntry(axis.Forward)
	require.NoError(t, err)
	assert.True(t, entry.Blocked())

	entry, err = turn.ResolveEntry(axis.Back)
	require.NoError(t, err)
	assert.Equal(t, Entry{Direction: axis.Left, Changed: true}, entry)
}

func TestTurnVectorPerTarget(t *testing.T) {
	tests := map[TurnTarget]axis.Direction{
		TurnForward: axis.Forward,
		TurnRight:   axis.Right,
		TurnBack:    axis.Back,
		TurnLeft:    axis.Left,
	}
	for target, want := range tests {
		assert.Equal(t, want, New(Cell{}, Turn, WithTurn(target)).TurnVector(), target.String())
	}
}

func TestRampResolution(t *testing.T) {
	ramp := New(Cell{}, Ramp, WithAccess(FullAccess()))

	entry, err := ramp.ResolveEntry(axis.Forward)
	require.NoError(t, err)
	assert.Equal(t, Entry{Direction: axis.Down}, entry)

	entry, err = ramp.ResolveEntry(axis.Down)
	require.NoError(t, err)
	assert.Equal(t, Entry{Direction: axis.Back}, entry)

	entry, err = ramp.ResolveEntry(axis.Right)
	require.NoError(t, err)
	assert.Equal(t, Entry{Direction: axis.Right}, entry)

	out, err := ramp.ResolveContinue(axis.Back)
	require.NoError(t, err)
	assert.Equal(t, axis.Up, out)

	out, err = ramp.ResolveContinue(axis.Forward)
	require.NoError(t, err)
	assert.Equal(t, axis.Forward, out)
}

func TestRampUsesLocalBasis(t *testing.T) {
	basis, err := NewBasis(axis.Left, axis.Up)
	require.NoError(t, err)
	ramp := New(Cell{}, Ramp, WithAccess(FullAccess()), WithBasis(basis))

	entry, err := ramp.ResolveEntry(axis.Left)
	require.NoError(t, err)
	assert.Equal(t, axis.Down, entry.Direction)

	entry, err = ramp.ResolveEntry(axis.Down)
	require.NoError(t, err)
	assert.Equal(t, axis.Right, entry.Direction)
}

func TestFloorlessTilesMakeTravelersFall(t *testing.T) {
	for _, f := range []Function{NoFunction, Custom} {
		cell := New(Cell{}, f, WithAccess(FullAccess()))

		entry, err := cell.ResolveEntry(axis.Forward)
		require.NoError(t, err)
		assert.Equal(t, Entry{Direction: axis.Down}, entry, f.String())

		entry, err = cell.ResolveEntry(axis.Up)
		require.NoError(t, err)
		assert.Equal(t, Entry{Direction: axis.Up}, entry, f.String())
	}
	assert.False(t, New(Cell{}, NoFunction).Supports(axis.Down))
	assert.False(t, New(Cell{}, NoFunction).Supports(axis.Zero))
}

func TestContinueAndEntryLookUpOppositeSides(t *testing.T) {
	// open only on the forward side
	custom := New(Cell{}, Custom, WithSide(SideForward, true))

	out, err := custom.ResolveContinue(axis.Forward)
	require.NoError(t, err)
	assert.Equal(t, axis.Forward, out)

	entry, err := custom.ResolveEntry(axis.Forward)
	require.NoError(t, err)
	assert.True(t, entry.Blocked())

	entry, err = custom.ResolveEntry(axis.Back)
	require.NoError(t, err)
	assert.Equal(t, axis.Down, entry.Direction)
}

func TestZeroDirectionIsContractViolation(t *testing.T) {
	plain := New(Cell{}, Plain)

	_, err := plain.ResolveContinue(axis.Zero)
	assert.ErrorIs(t, err, ErrInvalidDirectionVector)

	_, err = plain.ResolveEntry(axis.Zero)
	assert.ErrorIs(t, err, ErrInvalidDirectionVector)
}

func TestNewBasisRejectsParallelAxes(t *testing.T) {
	_, err := NewBasis(axis.Up, axis.Down)
	assert.ErrorIs(t, err, ErrInvalidBasis)

	b, err := NewBasis(axis.Forward, axis.Up)
	require.NoError(t, err)
	assert.Equal(t, IdentityBasis, b)

	for _, s := range []Side{SideForward, SideBack, SideRight, SideLeft, SideUp, SideDown} {
		rel, err := b.Relative(b.World(s))
		require.NoError(t, err)
		assert.Equal(t, s, rel)
	}
}

func TestCellOf(t *testing.T) {
	assert.Equal(t, Cell{1, -2, 0}, CellOf(mgl64.Vec3{1.2, -1.8, 0.3}, 1))
	assert.Equal(t, Cell{0, 0, 1}, CellOf(mgl64.Vec3{0, 0, 0.5}, 1))
	assert.Equal(t, Cell{2, 0, 0}, CellOf(mgl64.Vec3{4.1, 0, 0}, 2))
	assert.Equal(t, mgl64.Vec3{4, 0, -2}, Cell{2, 0, -1}.Center(2))
	assert.Equal(t, Cell{0, 1, 0}, Cell{}.Step(axis.Up))
}

type recordingListener struct{ entered []*Tile }

func (r *recordingListener) OnTileEntered(t *Tile) { r.entered = append(r.entered, t) }

func TestOnEnteredNotifiesOnce(t *testing.T) {
	l := &recordingListener{}
	goal := New(Cell{}, Plain, WithReach(ReachGoal))
	goal.OnEntered(l)
	goal.OnEntered(nil)

	require.Len(t, l.entered, 1)
	assert.Equal(t, ReachGoal, l.entered[0].ReachEvent())
}
