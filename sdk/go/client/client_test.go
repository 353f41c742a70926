package client

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/level"
	"github.com/zeusync/cubewalk/internal/core/locomotion"
	"github.com/zeusync/cubewalk/internal/core/simulation"
	"github.com/zeusync/cubewalk/internal/core/tile"
	"github.com/zeusync/cubewalk/internal/server"
)

func startServer(t *testing.T) (*simulation.Simulation, *server.Server) {
	t.Helper()
	doc := &level.Document{
		Name:  "hall",
		Spawn: level.SpawnSpec{Cell: tile.Cell{0, 0, 0}},
		Fill: []level.FillSpec{
			{From: tile.Cell{0, -1, 0}, To: tile.Cell{0, -1, 4}, Function: tile.Wall},
			{From: tile.Cell{0, 0, 0}, To: tile.Cell{0, 0, 4}, Function: tile.Plain},
		},
	}
	sim, err := simulation.New(level.Static{"hall": doc}, "hall", simulation.WithTickRate(10))
	require.NoError(t, err)

	cfg := server.DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.SnapshotInterval = 5 * time.Millisecond
	srv := server.NewServer(cfg, sim, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })
	return sim, srv
}

func newClient(srv *server.Server) *Client {
	cfg := DefaultClientConfig()
	cfg.ServerURL = "ws://" + srv.Addr().String() + "/ws"
	cfg.ConnectTimeout = 2 * time.Second
	cfg.MessageTimeout = 2 * time.Second
	return NewClient(cfg, nil)
}

func TestClientDrivesSimulation(t *testing.T) {
	sim, srv := startServer(t)
	ctx := context.Background()

	c := newClient(srv)
	var pushed int64
	c.OnSnapshot(func(simulation.Snapshot) { atomic.AddInt64(&pushed, 1) })
	require.NoError(t, c.Connect(ctx))
	defer c.Close()
	assert.NotEmpty(t, c.Session())
	assert.ErrorIs(t, c.Connect(ctx), ErrAlreadyConnected)

	require.NoError(t, c.Tendency(ctx, axis.Forward))
	require.NoError(t, sim.Step())

	require.Eventually(t, func() bool {
		snap, ok := c.Latest()
		return ok && snap.State == locomotion.Moving
	}, 2*time.Second, 5*time.Millisecond)
	snap, _ := c.Latest()
	assert.Equal(t, axis.Forward, snap.Tendency)
	assert.Equal(t, "hall", snap.Level)
	assert.Positive(t, atomic.LoadInt64(&pushed))

	require.NoError(t, c.Pause(ctx))
	require.NoError(t, c.Resume(ctx))
}

func TestClientReportsRejectedCommands(t *testing.T) {
	_, srv := startServer(t)
	ctx := context.Background()

	c := newClient(srv)
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	err := c.Send(ctx, server.ClientMessage{Type: "jump"})
	assert.ErrorIs(t, err, ErrCommandRejected)
	assert.Contains(t, err.Error(), server.ErrUnknownCommand.Error())

	err = c.Send(ctx, server.ClientMessage{Type: string(simulation.CommandGravity)})
	assert.ErrorIs(t, err, ErrCommandRejected)
}

func TestClientLifecycle(t *testing.T) {
	_, srv := startServer(t)
	c := newClient(srv)

	assert.ErrorIs(t, c.Pause(context.Background()), ErrNotConnected)
	_, ok := c.Latest()
	assert.False(t, ok)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(context.Background()), ErrClientClosed)
}
