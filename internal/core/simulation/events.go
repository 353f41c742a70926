package simulation

import "github.com/zeusync/cubewalk/internal/core/tile"

const (
	EventLevelRequest = "level.request"
	EventLevelLoaded  = "level.loaded"
)

// LevelRequest is published when a reach tile ends the traveler's run.
type LevelRequest struct {
	Traveler string          `json:"traveler"`
	Level    string          `json:"level"`
	Reach    tile.ReachEvent `json:"reach"`
	Tile     string          `json:"tile"`
}

type LevelLoaded struct {
	Level string `json:"level"`
	Tiles int    `json:"tiles"`
}
