// Package telnet serves the calculator over Telnet and provides the ANSI
// styling helpers shared by the text renderers.
package telnet

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI SGR sequences.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with color and a trailing Reset.
//
// Precondition: color must be an ANSI escape sequence.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats and then wraps the result with color and a trailing Reset.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes all "\033[...m" sequences from s.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 3
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// Width returns the number of printable runes in s.
func Width(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// PadRight pads styled text with spaces to width printable columns.
// Text already at least that wide is returned unchanged.
func PadRight(s string, width int) string {
	if n := Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PadLeft is PadRight with the padding placed before s.
func PadLeft(s string, width int) string {
	if n := Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
