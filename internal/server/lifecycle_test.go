package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	failErr error
	stopped chan struct{}
	once    sync.Once
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) record(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func newMockService(name string, order *stopOrder) *mockService {
	return &mockService{name: name, stopped: make(chan struct{}), order: order}
}

func (m *mockService) Name() string { return m.name }

func (m *mockService) ListenAndServe() error {
	if m.failErr != nil {
		return m.failErr
	}
	<-m.stopped
	return nil
}

func (m *mockService) Stop() {
	m.once.Do(func() {
		if m.order != nil {
			m.order.record(m.name)
		}
		close(m.stopped)
	})
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	order := &stopOrder{}
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add(newMockService("telnet", order))
	lc.Add(newMockService("websocket", order))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}
	assert.Equal(t, []string{"websocket", "telnet"}, order.names)
}

func TestLifecycleServiceFailureStopsOthers(t *testing.T) {
	boom := errors.New("address in use")
	healthy := newMockService("telnet", nil)
	failing := newMockService("websocket", nil)
	failing.failErr = boom

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add(healthy)
	lc.Add(failing)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "service websocket")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after failure")
	}

	select {
	case <-healthy.stopped:
	default:
		t.Fatal("healthy service was not stopped")
	}
}

func TestLifecycleNoServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, lc.Run(ctx))
}
