package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/simulation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// session is one websocket client. Writes come from the read loop and the broadcaster,
// so they are serialised.
type session struct {
	id          string
	conn        *websocket.Conn
	log         log.Log
	connectedAt time.Time
	timeout     time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *session) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.conn.WriteJSON(msg)
}

func (c *session) close() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.ctrl.Snapshot()); err != nil {
		s.logger.Warn("Failed to write snapshot", log.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if int(atomic.LoadInt64(&s.sessionCount)) >= s.config.MaxClients {
		s.logger.Warn("Maximum clients reached, rejecting connection", log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	sess := &session{
		id:          uuid.NewString(),
		conn:        conn,
		connectedAt: time.Now(),
		timeout:     s.config.WriteTimeout,
	}
	sess.log = s.logger.With(log.String("client_id", sess.id))

	s.sessions.Store(sess.id, sess)
	total := atomic.AddInt64(&s.sessionCount, 1)
	sess.log.Info("Client connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", total))

	defer func() {
		s.sessions.Delete(sess.id)
		total := atomic.AddInt64(&s.sessionCount, -1)
		sess.close()
		sess.log.Info("Client disconnected",
			log.Duration("connected_for", time.Since(sess.connectedAt)),
			log.Int64("total_clients", total))
	}()

	if err := sess.send(ServerMessage{Type: MessageWelcome, Session: sess.id}); err != nil {
		return
	}
	s.readLoop(sess)
}

func (s *Server) readLoop(sess *session) {
	for {
		_, p, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.log.Debug("Read failed", log.Error(err))
			}
			return
		}

		reply := s.handleMessage(sess, p)
		if err := sess.send(reply); err != nil {
			sess.log.Debug("Reply failed", log.Error(err))
			return
		}
	}
}

// handleMessage turns one client frame into a simulation command and builds the reply.
func (s *Server) handleMessage(sess *session, p []byte) ServerMessage {
	var msg ClientMessage
	if err := json.Unmarshal(p, &msg); err != nil {
		return errorMessage(fmt.Errorf("%w: %v", ErrInvalidMessage, err))
	}

	if msg.Type == MessageSnapshot {
		snap := s.ctrl.Snapshot()
		return ServerMessage{Type: MessageSnapshot, Snapshot: &snap}
	}

	typ, ok := commandTypes[msg.Type]
	if !ok {
		sess.log.Warn("Unknown command", log.String("type", msg.Type))
		return errorMessage(fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type))
	}
	if err := s.ctrl.Submit(simulation.Command{Type: typ, Direction: msg.Direction}); err != nil {
		if !errors.Is(err, simulation.ErrInvalidCommand) {
			sess.log.Warn("Command rejected", log.String("type", msg.Type), log.Error(err))
		}
		return errorMessage(err)
	}
	sess.log.Debug("Command queued", log.String("type", msg.Type), log.Stringer("direction", msg.Direction))
	return ServerMessage{Type: MessageAck, Command: msg.Type}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{Type: MessageError, Error: err.Error()}
}
