// Package ansi makes server-supplied text safe to print to a terminal.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Sanitize strips escape sequences and control characters from s. Tabs and
// newlines are kept and CRLF becomes LF. Other control bytes, including a
// lone CR, are removed.
//
// Sanitize is safe on stream deltas: a sequence split across two deltas
// loses its ESC byte, so the remainder prints as plain text.
func Sanitize(s string) string {
	s = xansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case r <= 0x1F || r == 0x7F:
			return -1
		case r >= 0x80 && r <= 0x9F:
			// C1 controls, including the single-byte CSI.
			return -1
		}
		return r
	}, s)
}
