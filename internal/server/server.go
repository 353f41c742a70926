package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/core/simulation"
)

// Controller is the part of the simulation the server drives.
type Controller interface {
	Submit(simulation.Command) error
	Snapshot() simulation.Snapshot
}

// Server is the websocket control surface of a running simulation.
type Server struct {
	ctrl Controller

	httpServer *http.Server
	listener   net.Listener

	// Client management
	sessions     sync.Map // map[string]*session
	sessionCount int64    // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	config Config
	logger log.Log

	// Background workers
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr       string
	MaxClients       int
	MaxMessageSize   int64
	WriteTimeout     time.Duration
	SnapshotInterval time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:8080",
		MaxClients:       64,
		MaxMessageSize:   4 * 1024,
		WriteTimeout:     5 * time.Second,
		SnapshotInterval: 100 * time.Millisecond,
	}
}

func NewServer(config Config, ctrl Controller, logger log.Log) *Server {
	def := DefaultServerConfig()
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = def.MaxMessageSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = def.SnapshotInterval
	}
	if logger == nil {
		logger = log.Provide()
	}

	s := &Server{
		ctrl:     ctrl,
		config:   config,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))
	return s
}

// Handler routes /ws to the websocket endpoint and /snapshot to a plain JSON snapshot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Start listens on the configured address and starts the snapshot broadcaster.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener
	s.stopChan = make(chan struct{})
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	go s.broadcastSnapshots()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound listen address; nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the listener down and disconnects every session.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")
	close(s.stopChan)

	err := s.httpServer.Shutdown(ctx)
	s.sessions.Range(func(_, value any) bool {
		value.(*session).close()
		return true
	})
	s.workerGroup.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if it is running. A closed server cannot be restarted.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil && !errors.Is(err, ErrServerNotRunning) {
		return err
	}
	return nil
}

// SessionCount is the number of connected websocket clients.
func (s *Server) SessionCount() int {
	return int(atomic.LoadInt64(&s.sessionCount))
}

// broadcastSnapshots pushes the latest snapshot to every session whenever a new frame
// has been simulated since the last push.
func (s *Server) broadcastSnapshots() {
	defer s.workerGroup.Done()
	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	last := int64(-1)
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			snap := s.ctrl.Snapshot()
			if snap.Frame == last {
				continue
			}
			last = snap.Frame
			msg := ServerMessage{Type: MessageSnapshot, Snapshot: &snap}
			s.sessions.Range(func(_, value any) bool {
				sess := value.(*session)
				if err := sess.send(msg); err != nil {
					sess.log.Debug("Snapshot push failed", log.Error(err))
					sess.close()
				}
				return true
			})
		}
	}
}
