package websocket

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cory-johannsen/pointbuy/internal/frontend/telnet"
)

// maxMessage bounds an inbound frame.
const maxMessage = 4096

// Conn adapts a WebSocket to the line interface used by the calculator.
// Each inbound text frame may carry several newline-separated commands.
// Each outbound line is one text frame with ANSI styling removed.
type Conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	pending []string
	wmu     sync.Mutex
	once    sync.Once
}

// NewConn wraps ws.
func NewConn(ws *websocket.Conn, writeTimeout time.Duration) *Conn {
	ws.SetReadLimit(maxMessage)
	return &Conn{ws: ws, writeTimeout: writeTimeout}
}

// ReadLine returns the next non-blank command line.
//
// Postcondition: The returned line is trimmed and non-empty, or err is non-nil.
func (c *Conn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(msg), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				c.pending = append(c.pending, line)
			}
		}
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *Conn) send(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(telnet.StripANSI(text)))
}

// WriteLine sends text as a single frame.
func (c *Conn) WriteLine(text string) error {
	return c.send(strings.ReplaceAll(text, "\r\n", "\n"))
}

// WritePrompt sends the prompt as its own frame.
func (c *Conn) WritePrompt(prompt string) error {
	return c.send(prompt)
}

// Close sends a normal-closure frame and closes the socket. Repeated calls
// are no-ops.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.wmu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wmu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
