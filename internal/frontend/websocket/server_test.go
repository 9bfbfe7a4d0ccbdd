package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/pointbuy/internal/config"
	"github.com/cory-johannsen/pointbuy/internal/frontend/telnet"
)

type echoHandler struct {
	sessions atomic.Int32
}

func (h *echoHandler) HandleWebSocket(ctx context.Context, conn *Conn) error {
	h.sessions.Add(1)
	for ctx.Err() == nil {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			return conn.WriteLine("bye")
		}
		_ = conn.WriteLine(telnet.Colorize(telnet.Green, "echo: "+line))
	}
	return ctx.Err()
}

func newTestServer(t *testing.T, origins ...string) (*Server, *echoHandler, string) {
	t.Helper()
	h := &echoHandler{}
	cfg := config.WebSocketConfig{Enabled: true, Path: "/ws", AllowedOrigins: origins, WriteTimeout: time.Second}
	s := NewServer(cfg, h, zaptest.NewLogger(t))
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		hs.Close()
	})
	return s, h, "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readText(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestServer_EchoStripsANSI(t *testing.T) {
	_, h, url := newTestServer(t)
	ws := dial(t, url, nil)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("inc str")))
	assert.Equal(t, "echo: inc str", readText(t, ws))

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("quit")))
	assert.Equal(t, "bye", readText(t, ws))
	assert.Equal(t, int32(1), h.sessions.Load())
}

func TestServer_MultiLineFrame(t *testing.T) {
	_, _, url := newTestServer(t)
	ws := dial(t, url, nil)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("  \nshow\n\npool 32\n")))
	assert.Equal(t, "echo: show", readText(t, ws))
	assert.Equal(t, "echo: pool 32", readText(t, ws))
}

func TestServer_OriginCheck(t *testing.T) {
	_, _, url := newTestServer(t, "https://calc.example")

	dial(t, url, http.Header{"Origin": {"https://CALC.example"}})
	dial(t, url, nil)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_StopClosesClients(t *testing.T) {
	s, _, url := newTestServer(t)
	ws := dial(t, url, nil)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hi")))
	readText(t, ws)
	require.Equal(t, 1, s.Active())

	s.Stop()
	assert.Equal(t, 0, s.Active())
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func stopWithin(t *testing.T, s *Server, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("Stop did not return")
	}
}

func TestServer_RejectsAfterStop(t *testing.T) {
	s, h, url := newTestServer(t)
	stopWithin(t, s, 2*time.Second)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(0), h.sessions.Load())
	assert.Equal(t, 0, s.Active())
}

func TestServer_FailedUpgradeDoesNotBlockStop(t *testing.T) {
	s, _, url := newTestServer(t)
	resp, err := http.Get("http" + strings.TrimPrefix(url, "ws"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	stopWithin(t, s, 2*time.Second)
}

// Clients connecting while Stop runs are either served and waited for, or
// turned away; none outlives Stop.
func TestServer_DialRacingStop(t *testing.T) {
	s, _, url := newTestServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				ws, _, err := websocket.DefaultDialer.Dial(url, nil)
				if err != nil {
					continue
				}
				_ = ws.WriteMessage(websocket.TextMessage, []byte("hi"))
				ws.Close()
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	stopWithin(t, s, 5*time.Second)
	assert.Equal(t, 0, s.Active())
	wg.Wait()
	assert.Equal(t, 0, s.Active())
}
