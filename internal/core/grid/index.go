package grid

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/cubewalk/internal/core/tile"
)

const defaultShardCount = 16

// index is a hash-sharded cell -> tile map. Each shard has its own lock so concurrent
// readers (renderers, snapshot streaming) never contend with each other.
type index struct {
	shards []indexShard
	count  int
}

type indexShard struct {
	mx    sync.RWMutex
	tiles map[tile.Cell]*tile.Tile
}

func newIndex(shardCount int) *index {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	idx := &index{shards: make([]indexShard, shardCount), count: shardCount}
	for i := range idx.shards {
		idx.shards[i].tiles = make(map[tile.Cell]*tile.Tile)
	}
	return idx
}

func cellHash(c tile.Cell) uint64 {
	var buf [24]byte
	for i, v := range c {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(v)))
	}
	return xxhash.Sum64(buf[:])
}

func (i *index) shardFor(c tile.Cell) *indexShard {
	return &i.shards[cellHash(c)%uint64(i.count)]
}

func (i *index) get(c tile.Cell) (*tile.Tile, bool) {
	sh := i.shardFor(c)
	sh.mx.RLock()
	defer sh.mx.RUnlock()
	t, ok := sh.tiles[c]
	return t, ok
}

// put stores t and reports whether it replaced an existing tile.
func (i *index) put(t *tile.Tile) bool {
	sh := i.shardFor(t.Cell())
	sh.mx.Lock()
	defer sh.mx.Unlock()
	_, existed := sh.tiles[t.Cell()]
	sh.tiles[t.Cell()] = t
	return existed
}

func (i *index) len() int {
	n := 0
	for s := range i.shards {
		sh := &i.shards[s]
		sh.mx.RLock()
		n += len(sh.tiles)
		sh.mx.RUnlock()
	}
	return n
}

func (i *index) each(fn func(*tile.Tile)) {
	for s := range i.shards {
		sh := &i.shards[s]
		sh.mx.RLock()
		snapshot := make([]*tile.Tile, 0, len(sh.tiles))
		for _, t := range sh.tiles {
			snapshot = append(snapshot, t)
		}
		sh.mx.RUnlock()
		for _, t := range snapshot {
			fn(t)
		}
	}
}
