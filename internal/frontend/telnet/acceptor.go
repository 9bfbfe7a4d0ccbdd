package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pointbuy/internal/config"
)

// SessionHandler runs the calculator loop for one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for Telnet clients and hands each connection to a
// SessionHandler on its own goroutine.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	active atomic.Int64

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates a Telnet acceptor.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready for ListenAndServe.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger.Named("telnet"),
		quit:    make(chan struct{}),
	}
}

// Name identifies the acceptor in lifecycle logs.
func (a *Acceptor) Name() string {
	return "telnet"
}

// ListenAndServe accepts connections until Stop is called. It blocks for
// the lifetime of the listener.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("listening", zap.String("addr", listener.Addr().String()))

	for {
		raw, err := listener.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}

		a.wg.Add(1)
		go a.serve(raw)
	}
}

// serve owns one client connection from negotiation to close.
func (a *Acceptor) serve(raw net.Conn) {
	defer a.wg.Done()
	start := time.Now()
	n := a.active.Add(1)
	defer a.active.Add(-1)

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()
	log := a.logger.With(zap.String("remote_addr", conn.RemoteAddr()))
	log.Debug("client connected", zap.Int64("active", n))

	if err := conn.Negotiate(); err != nil {
		log.Warn("negotiation failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-a.quit:
			cancel()
			// Unblock a pending ReadLine.
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	err := a.handler.HandleSession(ctx, conn)
	log.Debug("client disconnected",
		zap.Error(err),
		zap.Duration("duration", time.Since(start)),
	)
}

// Stop closes the listener, disconnects every client, and waits for their
// handlers to return.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.wg.Wait()

	a.logger.Info("stopped")
}

// Addr returns the bound address, or "" before the listener is open.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Active returns the number of connected clients.
func (a *Acceptor) Active() int {
	return int(a.active.Load())
}
