// Package websocket serves the calculator to browsers over WebSocket.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pointbuy/internal/config"
)

// SessionHandler runs the calculator loop for one browser client.
type SessionHandler interface {
	HandleWebSocket(ctx context.Context, conn *Conn) error
}

// Server upgrades HTTP requests on the configured path and hands each
// socket to a SessionHandler.
type Server struct {
	cfg      config.WebSocketConfig
	handler  SessionHandler
	logger   *zap.Logger
	upgrader websocket.Upgrader

	active atomic.Int64
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// NewServer creates a WebSocket server.
//
// Precondition: handler and logger must be non-nil.
func NewServer(cfg config.WebSocketConfig, handler SessionHandler, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger.Named("websocket"),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Name identifies the server in lifecycle logs.
func (s *Server) Name() string {
	return "websocket"
}

// checkOrigin accepts requests without an Origin header and, when
// AllowedOrigins is non-empty, only the listed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	s.logger.Warn("origin rejected",
		zap.String("origin", origin),
		zap.String("remote_addr", r.RemoteAddr),
	)
	return false
}

// Handler returns the HTTP handler serving the upgrade path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.upgrade)
	return mux
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) {
	// Count the client before Upgrade hijacks the connection. Stop cancels
	// under mu, so no Add follows its Wait.
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wg.Done()
		// Upgrade has already written the HTTP error response.
		s.logger.Debug("upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	go s.serve(NewConn(ws, s.cfg.WriteTimeout))
}

func (s *Server) serve(conn *Conn) {
	defer s.wg.Done()
	start := time.Now()
	n := s.active.Add(1)
	defer s.active.Add(-1)
	defer conn.Close()

	log := s.logger.With(zap.String("remote_addr", conn.RemoteAddr()))
	log.Debug("client connected", zap.Int64("active", n))

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	err := s.handler.HandleWebSocket(ctx, conn)
	log.Debug("client disconnected", zap.Error(err), zap.Duration("duration", time.Since(start)))
}

// ListenAndServe serves HTTP on the configured address until Stop.
//
// Postcondition: Returns nil after a clean Stop.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.cfg.Path),
	)
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket: %w", err)
	}
	return nil
}

// Stop closes the listener, disconnects every client, and waits for their
// handlers to return.
func (s *Server) Stop() {
	s.mu.Lock()
	s.cancel()
	srv := s.http
	s.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("shutdown", zap.Error(err))
		}
	}
	s.wg.Wait()
	s.logger.Info("stopped")
}

// Addr returns the bound address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Active returns the number of connected clients.
func (s *Server) Active() int {
	return int(s.active.Load())
}
