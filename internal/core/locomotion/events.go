package locomotion

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

// Event types published on the bus.
const (
	EventStateChanged = "traveler.state"
	EventTileEntered  = "tile.entered"
	EventStuck        = "traveler.stuck"
)

type StateChanged struct {
	Traveler string `json:"traveler"`
	From     State  `json:"from"`
	To       State  `json:"to"`
}

type TileEntered struct {
	Traveler string          `json:"traveler"`
	Tile     string          `json:"tile"`
	Cell     tile.Cell       `json:"cell"`
	Function tile.Function   `json:"function"`
	Reach    tile.ReachEvent `json:"reach"`
	Position mgl64.Vec3      `json:"position"`
}

type StuckEvent struct {
	Traveler  string         `json:"traveler"`
	Position  mgl64.Vec3     `json:"position"`
	Tendency  axis.Direction `json:"tendency"`
	Attempted axis.Direction `json:"attempted"`
}
