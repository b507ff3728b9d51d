package preview

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// isBinary reports whether a captured body cannot be shown as text.
func isBinary(body string) bool {
	return !utf8.ValidString(body) || strings.IndexByte(body, 0) >= 0
}

// sanitize strips terminal escape sequences and every control character
// except newline and tab from text taken off the wire.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20, r == 0x7f, r >= 0x80 && r < 0xa0:
			return -1
		}
		return r
	}, ansi.Strip(s))
}
