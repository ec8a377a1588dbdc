package news

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Sanitize normalizes feed text to NFC and drops bytes and code points that
// cannot be stored or displayed safely: invalid UTF-8, NUL and other control
// characters except tab and newlines, and Unicode non-characters.
// Non-ASCII letters are kept.
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case unicode.IsControl(r):
			return -1
		case r == utf8.RuneError:
			return -1
		case r >= 0xFDD0 && r <= 0xFDEF, r&0xFFFE == 0xFFFE:
			return -1
		}
		return r
	}, s)

	return norm.NFC.String(s)
}
