// Package client drives a cubewalk traveler over the websocket control surface.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/cubewalk/internal/core/axis"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/simulation"
	"github.com/zeusync/cubewalk/internal/server"
)

// Client represents a control connection to a cubewalk server
type Client struct {
	conn    *websocket.Conn
	session string

	// One request in flight at a time; its reply arrives on replies.
	requestMu sync.Mutex
	replies   chan server.ServerMessage
	writeMu   sync.Mutex

	latest           atomic.Pointer[simulation.Snapshot]
	snapshotHandlers []SnapshotHandler
	handlerMutex     sync.RWMutex

	// Lifecycle
	connectMu sync.Mutex
	connected int32 // atomic bool
	closed    int32 // atomic bool
	done      chan struct{}

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

// Config holds configuration for the client
type Config struct {
	// ServerURL is the websocket endpoint, e.g. ws://127.0.0.1:8080/ws.
	ServerURL      string
	ConnectTimeout time.Duration
	MessageTimeout time.Duration
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "ws://127.0.0.1:8080/ws",
		ConnectTimeout: 10 * time.Second,
		MessageTimeout: 5 * time.Second,
	}
}

// SnapshotHandler receives every snapshot the server pushes.
type SnapshotHandler func(snapshot simulation.Snapshot)

func NewClient(config Config, logger log.Log) *Client {
	if logger == nil {
		logger = log.Provide()
	}
	return &Client{
		replies: make(chan server.ServerMessage, 1),
		done:    make(chan struct{}),
		config:  config,
		logger:  logger.With(log.String("component", "client")),
	}
}

// Connect dials the server and waits for its welcome.
func (c *Client) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	c.connectMu.Lock()
	defer c.connectMu.Unlock()
	if atomic.LoadInt32(&c.connected) == 1 {
		return ErrAlreadyConnected
	}

	c.logger.Info("Connecting to server", log.String("url", c.config.ServerURL))
	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(connectCtx, c.config.ServerURL, nil)
	if err != nil {
		c.logger.Error("Failed to connect to server", log.String("url", c.config.ServerURL), log.Error(err))
		return err
	}

	var welcome server.ServerMessage
	_ = conn.SetReadDeadline(time.Now().Add(c.config.ConnectTimeout))
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != server.MessageWelcome {
		_ = conn.Close()
		return fmt.Errorf("%w: expected welcome", ErrInvalidMessage)
	}
	_ = conn.SetReadDeadline(time.Time{})

	c.conn = conn
	c.session = welcome.Session
	atomic.StoreInt32(&c.connected, 1)
	c.logger.Info("Connected to server", log.String("session", c.session))

	c.workerGroup.Add(1)
	go c.readLoop()
	return nil
}

// Session is the id the server assigned to this connection.
func (c *Client) Session() string { return c.session }

// OnSnapshot registers a handler for pushed snapshots. Handlers run on the read goroutine.
func (c *Client) OnSnapshot(h SnapshotHandler) {
	c.handlerMutex.Lock()
	c.snapshotHandlers = append(c.snapshotHandlers, h)
	c.handlerMutex.Unlock()
}

// Latest returns the most recent pushed snapshot, if any arrived yet.
func (c *Client) Latest() (simulation.Snapshot, bool) {
	snap := c.latest.Load()
	if snap == nil {
		return simulation.Snapshot{}, false
	}
	return *snap, true
}

func (c *Client) Tendency(ctx context.Context, d axis.Direction) error {
	return c.Send(ctx, server.ClientMessage{Type: string(simulation.CommandTendency), Direction: d})
}

func (c *Client) Move(ctx context.Context, d axis.Direction) error {
	return c.Send(ctx, server.ClientMessage{Type: string(simulation.CommandMove), Direction: d})
}

func (c *Client) Pause(ctx context.Context) error {
	return c.Send(ctx, server.ClientMessage{Type: string(simulation.CommandPause)})
}

func (c *Client) Resume(ctx context.Context) error {
	return c.Send(ctx, server.ClientMessage{Type: string(simulation.CommandResume)})
}

// Send writes one command and waits for the server to acknowledge or reject it.
func (c *Client) Send(ctx context.Context, msg server.ClientMessage) error {
	if atomic.LoadInt32(&c.connected) == 0 {
		return ErrNotConnected
	}
	c.requestMu.Lock()
	defer c.requestMu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.MessageTimeout))
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	timer := time.NewTimer(c.config.MessageTimeout)
	defer timer.Stop()
	select {
	case reply := <-c.replies:
		if reply.Type == server.MessageError {
			return fmt.Errorf("%w: %s", ErrCommandRejected, reply.Error)
		}
		return nil
	case <-timer.C:
		return ErrMessageTimeout
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClientClosed
	}
}

// readLoop routes pushed snapshots to the handlers and everything else to the pending request.
func (c *Client) readLoop() {
	defer c.workerGroup.Done()
	defer atomic.StoreInt32(&c.connected, 0)

	for {
		var msg server.ServerMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if atomic.LoadInt32(&c.closed) == 0 {
				c.logger.Warn("Connection lost", log.Error(err))
			}
			return
		}

		switch msg.Type {
		case server.MessageSnapshot:
			if msg.Snapshot == nil {
				continue
			}
			snap := *msg.Snapshot
			c.latest.Store(&snap)
			c.handlerMutex.RLock()
			handlers := c.snapshotHandlers
			c.handlerMutex.RUnlock()
			for _, h := range handlers {
				h(snap)
			}
		case server.MessageAck, server.MessageError:
			select {
			case c.replies <- msg:
			default:
				c.logger.Debug("Dropped unexpected reply", log.String("type", msg.Type))
			}
		}
	}
}

// Close closes the connection and releases all resources
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	close(c.done)
	if c.conn != nil {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
	c.workerGroup.Wait()
	c.logger.Info("Client closed")
	return nil
}
