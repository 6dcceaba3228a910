package session

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize prepares collaborator diagnostics for display. Terminal escape
// sequences and control characters other than newline and tab are removed and
// trailing whitespace is trimmed. An empty result is replaced so that no
// failure is ever shown without a message.
func Sanitize(stage Stage, msg string) string {
	msg = ansi.Strip(msg)
	msg = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		}
		return r
	}, msg)
	msg = strings.TrimRight(msg, " \t\n")
	if strings.TrimSpace(msg) == "" {
		return string(stage) + " failed"
	}
	return msg
}
