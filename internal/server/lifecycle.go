// Package server runs the calculator's network services together, stopping
// them in reverse order on SIGINT, SIGTERM or the first service failure.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running listener.
type Service interface {
	// Name identifies the service in logs.
	Name() string
	// ListenAndServe blocks until Stop is called or the service fails.
	ListenAndServe() error
	// Stop shuts the service down and waits for its clients.
	Stop()
}

// Lifecycle starts services in the order they were added and stops them in
// reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []Service
	mu       sync.Mutex
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc.
//
// Precondition: svc must be non-nil.
func (l *Lifecycle) Add(svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, svc)
}

// Run starts every service and blocks until a signal arrives, ctx is done
// or a service fails.
//
// Postcondition: All services are stopped and their ListenAndServe calls
// have returned. Returns the first service failure, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]Service(nil), l.services...)
	l.mu.Unlock()

	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(services))
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", svc.Name()))
			if err := svc.ListenAndServe(); err != nil {
				l.logger.Error("service failed", zap.String("service", svc.Name()), zap.Error(err))
				errCh <- fmt.Errorf("service %s: %w", svc.Name(), err)
			}
		}(svc)
	}

	var runErr error
	select {
	case <-ctx.Done():
		l.logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	case runErr = <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(runErr))
	}

	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		svcStart := time.Now()
		svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", svc.Name()),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	wg.Wait()

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return runErr
}
