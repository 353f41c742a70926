package journal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/events/bus"
)

type moved struct {
	Cell [3]int `json:"cell"`
}

func TestWriteAndReadBack(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(Entry{Type: "tile.entered", Source: "t1", Data: moved{Cell: [3]int{0, 0, 1}}}))
	require.NoError(t, w.Write(Entry{Type: "traveler.stuck", Source: "t1"}))
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write(Entry{Type: "late"}), ErrClosed)

	var records []Record
	require.NoError(t, Read(&buf, func(r Record) error {
		records = append(records, r)
		return nil
	}))

	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, "tile.entered", records[0].Type)
	var m moved
	require.NoError(t, json.Unmarshal(records[0].Data, &m))
	assert.Equal(t, [3]int{0, 0, 1}, m.Cell)
	assert.Equal(t, uint64(2), records[1].Seq)
	assert.False(t, records[1].Time.IsZero())
}

func TestAttachRecordsEveryBusEvent(t *testing.T) {
	dir := t.TempDir()
	w, path, err := Create(dir, "trace")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	b := bus.New()
	sub, err := w.Attach(b)
	require.NoError(t, err)
	require.NoError(t, b.Publish(bus.NewEvent("traveler.state", "t1", map[string]string{"to": "moving"})))
	require.NoError(t, b.Publish(bus.NewEvent("tile.entered", "t1", nil)))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Publish(bus.NewEvent("ignored", "t1", nil)))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var types []string
	require.NoError(t, Read(f, func(r Record) error {
		types = append(types, r.Type)
		return nil
	}))
	assert.Equal(t, []string{"traveler.state", "tile.entered"}, types)
}
