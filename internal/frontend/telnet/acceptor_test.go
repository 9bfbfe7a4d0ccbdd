package telnet

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/pointbuy/internal/config"
	"github.com/cory-johannsen/pointbuy/internal/testutil"
)

// echoHandler echoes lines back until "quit" or context cancellation.
type echoHandler struct {
	sessions atomic.Int32
}

func (h *echoHandler) HandleSession(ctx context.Context, conn *Conn) error {
	h.sessions.Add(1)
	for ctx.Err() == nil {
		_ = conn.WritePrompt("> ")
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			return conn.WriteLine("bye")
		}
		_ = conn.WriteLine("echo: " + line)
	}
	return ctx.Err()
}

func startAcceptor(t *testing.T, h SessionHandler) *Acceptor {
	t.Helper()
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := NewAcceptor(cfg, h, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()
	t.Cleanup(func() {
		acc.Stop()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("acceptor did not stop in time")
		}
	})

	require.Eventually(t, func() bool {
		return acc.IsRunning() && acc.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond, "acceptor did not start")
	return acc
}

func TestAcceptorEcho(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)

	client := testutil.NewTelnetClient(t, acc.Addr())
	first := client.ReadUntil("> ")
	assert.Contains(t, first, string([]byte{IAC, WILL, OptSuppressGoAhead}))

	out := client.Exchange("hello", "> ")
	assert.Contains(t, out, "echo: hello\r\n")

	client.Send("quit")
	client.ReadUntil("bye\r\n")

	assert.Eventually(t, func() bool { return acc.Active() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), handler.sessions.Load())
}

func TestAcceptorMultipleClients(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)

	const numClients = 3
	clients := make([]*testutil.TelnetClient, numClients)
	for i := range clients {
		clients[i] = testutil.NewTelnetClient(t, acc.Addr())
		clients[i].ReadUntil("> ")
	}
	assert.Equal(t, numClients, acc.Active())

	for _, c := range clients {
		c.Send("quit")
		c.ReadUntil("bye")
	}
	assert.Eventually(t, func() bool {
		return handler.sessions.Load() == numClients && acc.Active() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptorStopDisconnectsClients(t *testing.T) {
	handler := &echoHandler{}
	acc := startAcceptor(t, handler)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("> ")

	done := make(chan struct{})
	go func() {
		acc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop blocked on an idle client")
	}
	assert.False(t, acc.IsRunning())
	assert.Equal(t, 0, acc.Active())
}
