package telnet

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, RFC 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

const (
	backspace byte = 8
	del       byte = 127
	// maxLine bounds a single input line; longer input is truncated.
	maxLine = 1024
)

// Conn is a line-oriented Telnet connection. Option negotiation from the
// client is consumed and ignored; backspace edits the pending line.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	once   sync.Once

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate announces that the server suppresses go-ahead and leaves echo
// to the client.
func (c *Conn) Negotiate() error {
	return c.write([]byte{
		IAC, WILL, OptSuppressGoAhead,
		IAC, WONT, OptEcho,
	})
}

// ReadLine returns the next line of input without its terminator.
// Telnet commands and control characters other than tab are dropped.
//
// Postcondition: Returns the line, or the partial line and an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			// CR LF and CR NUL both end the line.
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b == backspace || b == del:
			if line.Len() > 0 {
				line.Truncate(line.Len() - 1)
			}
		case b < 32 && b != '\t':
		default:
			if line.Len() < maxLine {
				line.WriteByte(b)
			}
		}
	}
}

// skipCommand consumes the remainder of a command whose IAC was just read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err := c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by CR LF. Embedded "\n" line breaks are
// converted to CR LF.
func (c *Conn) WriteLine(text string) error {
	return c.write(toCRLF(text + "\n"))
}

// WritePrompt sends text without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write(toCRLF(prompt))
}

// Close closes the connection. Repeated calls are no-ops.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() { err = c.raw.Close() })
	return err
}

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() string {
	return c.raw.RemoteAddr().String()
}

// toCRLF rewrites bare LF as CR LF and doubles literal IAC bytes.
func toCRLF(s string) []byte {
	out := make([]byte, 0, len(s)+8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			if i == 0 || s[i-1] != '\r' {
				out = append(out, '\r')
			}
			out = append(out, '\n')
		case IAC:
			out = append(out, IAC, IAC)
		default:
			out = append(out, s[i])
		}
	}
	return out
}

// FilterIAC removes Telnet command sequences from input, leaving one 0xFF
// for each escaped IAC IAC pair.
//
// Postcondition: Returns input with all IAC sequences removed.
func FilterIAC(input []byte) []byte {
	result := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		if input[i] != IAC || i+1 >= len(input) {
			result = append(result, input[i])
			i++
			continue
		}
		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 3
		case SB:
			j := i + 2
			for j < len(input)-1 && !(input[j] == IAC && input[j+1] == SE) {
				j++
			}
			i = j + 2
		case IAC:
			result = append(result, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return result
}
