package locomotion

import "github.com/zeusync/cubewalk/internal/core/tile"

// Observer receives the callbacks locomotion owes its collaborators. Both run
// synchronously inside Tick.
type Observer interface {
	tile.Listener
	// OnStuck fires once each time a move attempt finds no viable direction.
	OnStuck()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	TileEntered func(*tile.Tile)
	Stuck       func()
}

func (o ObserverFuncs) OnTileEntered(t *tile.Tile) {
	if o.TileEntered != nil {
		o.TileEntered(t)
	}
}

func (o ObserverFuncs) OnStuck() {
	if o.Stuck != nil {
		o.Stuck()
	}
}
