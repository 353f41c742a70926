package level

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/grid"
	"github.com/zeusync/cubewalk/internal/core/systems/physics"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

// Level is a built, playable level.
type Level struct {
	Name  string
	Next  string
	Grid  *grid.Grid
	Spawn Spawn
}

// Spawn is where and how the traveler starts.
type Spawn struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Tendency axis.Direction
	Gravity  axis.Direction
}

// Pose is the spawn as a physics pose.
func (s Spawn) Pose() physics.Pose {
	return physics.Pose{Position: s.Position, Rotation: s.Rotation}
}

// Build turns a document into a grid and a spawn.
func Build(doc *Document) (*Level, error) {
	size := doc.TileLength
	if size <= 0 {
		size = 1
	}

	cells := make(map[tile.Cell]*tile.Tile)
	for i, f := range doc.Fill {
		opts, err := tileOptions(f.Basis, f.Access)
		if err != nil {
			return nil, fmt.Errorf("%w: fill %d: %v", ErrInvalidLevel, i, err)
		}
		lo, hi := boxBounds(f.From, f.To)
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					c := tile.Cell{x, y, z}
					cells[c] = tile.New(c, f.Function, opts...)
				}
			}
		}
	}

	explicit := make(map[tile.Cell]bool, len(doc.Tiles))
	for _, spec := range doc.Tiles {
		if explicit[spec.Cell] {
			return nil, fmt.Errorf("%w: cell %s listed twice", ErrInvalidLevel, spec.Cell)
		}
		explicit[spec.Cell] = true
		opts, err := tileOptions(spec.Basis, spec.Access)
		if err != nil {
			return nil, fmt.Errorf("%w: tile %s: %v", ErrInvalidLevel, spec.Cell, err)
		}
		opts = append(opts, tile.WithName(spec.Name), tile.WithTurn(spec.Turn), tile.WithReach(spec.Reach))
		cells[spec.Cell] = tile.New(spec.Cell, spec.Function, opts...)
	}

	g := grid.New(size)
	for _, t := range cells {
		if err := g.Add(t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
	}

	spawn, err := buildSpawn(doc.Spawn, g)
	if err != nil {
		return nil, err
	}
	return &Level{Name: doc.Name, Next: doc.Next, Grid: g, Spawn: spawn}, nil
}

func buildSpawn(spec SpawnSpec, g *grid.Grid) (Spawn, error) {
	t, ok := g.At(spec.Cell)
	if !ok {
		return Spawn{}, fmt.Errorf("%w: spawn cell %s holds no tile", ErrInvalidLevel, spec.Cell)
	}
	gravity := spec.Gravity
	if gravity.IsZero() {
		gravity = axis.Down
	}
	facing := spec.Facing
	if facing.IsZero() {
		facing = axis.Forward
		if facing == gravity || facing == gravity.Negate() {
			facing = axis.Right
		}
	}
	if facing == gravity || facing == gravity.Negate() {
		return Spawn{}, fmt.Errorf("%w: spawn facing %v is parallel to gravity %v", ErrInvalidLevel, facing, gravity)
	}
	return Spawn{
		Position: g.PositionOf(t),
		Rotation: physics.LookRotation(facing.Vector(), gravity.Negate().Vector()),
		Tendency: spec.Tendency,
		Gravity:  gravity,
	}, nil
}

func tileOptions(basis *BasisSpec, access map[string]bool) ([]tile.Option, error) {
	var opts []tile.Option
	if basis != nil {
		b, err := tile.NewBasis(basis.Forward, basis.Up)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tile.WithBasis(b))
	}
	for name, open := range access {
		side, err := tile.ParseSide(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tile.WithSide(side, open))
	}
	return opts, nil
}

func boxBounds(a, b tile.Cell) (lo, hi tile.Cell) {
	for i := 0; i < 3; i++ {
		lo[i], hi[i] = min(a[i], b[i]), max(a[i], b[i])
	}
	return lo, hi
}

// Load reads, validates and builds the level file at path. The format follows the
// extension: .json is JSON, anything else YAML.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Build(doc)
}
