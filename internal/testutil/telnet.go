// Package testutil holds helpers for driving the calculator's line
// frontends in tests.
package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// DefaultTimeout bounds each read and write made by the test clients.
const DefaultTimeout = 3 * time.Second

// TelnetClient is a raw TCP client for exercising the Telnet frontend.
type TelnetClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      testing.TB
}

// NewTelnetClient dials addr and registers cleanup with t.
//
// Precondition: addr must be a listening "host:port".
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t testing.TB, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, reader: bufio.NewReader(conn), t: t}
}

// ReadUntil reads until substr appears in the accumulated output.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns everything read, ending with substr, or fails the test.
func (c *TelnetClient) ReadUntil(substr string) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(DefaultTimeout))

	var buf strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, buf.String(), err)
		}
		buf.WriteByte(b)
		if strings.HasSuffix(buf.String(), substr) {
			return buf.String()
		}
	}
}

// Send writes text followed by CR LF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Exchange sends a command and returns the output up to the next prompt.
func (c *TelnetClient) Exchange(text, prompt string) string {
	c.t.Helper()
	c.Send(text)
	return c.ReadUntil(prompt)
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
