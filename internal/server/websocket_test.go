package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/locomotion"
	"github.com/zeusync/cubewalk/internal/core/simulation"
)

type fakeController struct {
	mu       sync.Mutex
	commands []simulation.Command
	frame    int64
	err      error
}

func (f *fakeController) Submit(c simulation.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, c)
	return nil
}

func (f *fakeController) Snapshot() simulation.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame++
	return simulation.Snapshot{Frame: f.frame, Level: "hall", State: locomotion.CanMove, Tendency: axis.Forward}
}

func (f *fakeController) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeController) submitted() []simulation.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]simulation.Command(nil), f.commands...)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var welcome ServerMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, MessageWelcome, welcome.Type)
	require.NotEmpty(t, welcome.Session)
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, raw string) ServerMessage {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
	var reply ServerMessage
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketCommands(t *testing.T) {
	ctrl := &fakeController{}
	server := NewServer(DefaultServerConfig(), ctrl, nil)

	s := httptest.NewServer(server.Handler())
	defer s.Close()
	conn := dial(t, "ws"+strings.TrimPrefix(s.URL, "http")+"/ws")

	reply := roundTrip(t, conn, `{"type":"tendency","direction":"+z"}`)
	assert.Equal(t, MessageAck, reply.Type)
	assert.Equal(t, "tendency", reply.Command)

	assert.Equal(t, MessageAck, roundTrip(t, conn, `{"type":"pause"}`).Type)
	assert.Equal(t, MessageAck, roundTrip(t, conn, `{"type":"resume"}`).Type)

	assert.Equal(t, []simulation.Command{
		{Type: simulation.CommandTendency, Direction: axis.Forward},
		{Type: simulation.CommandPause},
		{Type: simulation.CommandResume},
	}, ctrl.submitted())

	reply = roundTrip(t, conn, `{"type":"snapshot"}`)
	require.Equal(t, MessageSnapshot, reply.Type)
	require.NotNil(t, reply.Snapshot)
	assert.Equal(t, "hall", reply.Snapshot.Level)
	assert.Equal(t, locomotion.CanMove, reply.Snapshot.State)
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	ctrl := &fakeController{}
	server := NewServer(DefaultServerConfig(), ctrl, nil)
	s := httptest.NewServer(server.Handler())
	defer s.Close()
	conn := dial(t, "ws"+strings.TrimPrefix(s.URL, "http")+"/ws")

	reply := roundTrip(t, conn, `{"type":"jump"}`)
	assert.Equal(t, MessageError, reply.Type)
	assert.Contains(t, reply.Error, ErrUnknownCommand.Error())

	reply = roundTrip(t, conn, `{"type":"tendency","direction":"sideways"}`)
	assert.Equal(t, MessageError, reply.Type)
	assert.Contains(t, reply.Error, ErrInvalidMessage.Error())

	reply = roundTrip(t, conn, `not json`)
	assert.Equal(t, MessageError, reply.Type)

	ctrl.fail(simulation.ErrQueueFull)
	reply = roundTrip(t, conn, `{"type":"pause"}`)
	assert.Equal(t, MessageError, reply.Type)
	assert.Equal(t, simulation.ErrQueueFull.Error(), reply.Error)

	assert.Empty(t, ctrl.submitted())
}

func TestMaxClients(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxClients = 1
	server := NewServer(cfg, &fakeController{}, nil)
	s := httptest.NewServer(server.Handler())
	defer s.Close()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"

	dial(t, u)
	require.Eventually(t, func() bool { return server.SessionCount() == 1 }, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	server := NewServer(DefaultServerConfig(), &fakeController{}, nil)
	s := httptest.NewServer(server.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap simulation.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "hall", snap.Level)
	assert.Equal(t, axis.Forward, snap.Tendency)
}

func TestStartBroadcastsSnapshots(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.SnapshotInterval = 10 * time.Millisecond
	server := NewServer(cfg, &fakeController{}, nil)

	require.NoError(t, server.Start(context.Background()))
	assert.ErrorIs(t, server.Start(context.Background()), ErrServerAlreadyRunning)

	conn := dial(t, "ws://"+server.Addr().String()+"/ws")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
	assert.ErrorIs(t, server.Stop(ctx), ErrServerNotRunning)

	require.NoError(t, server.Close())
	assert.ErrorIs(t, server.Start(context.Background()), ErrServerClosed)
}
