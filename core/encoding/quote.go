// Package encoding provides shared text escaping and number formatting
// utilities for the Praat text formats.
package encoding

import (
	"strconv"
	"strings"
)

// EscapeQuoted wraps s in double quotes, doubling any embedded quote
// characters per the Praat text-format convention.
func EscapeQuoted(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// UnescapeQuoted reverses EscapeQuoted on the content between the quotes.
func UnescapeQuoted(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParseQuoted extracts the quoted string starting at the first byte of s,
// honoring doubled-quote escapes. It returns the unescaped content and the
// number of input bytes consumed (including both delimiters). ok is false if
// s does not start with a quote or the string is unterminated.
func ParseQuoted(s string) (value string, consumed int, ok bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0, false
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c != '"' {
			b.WriteByte(c)
			i++
			continue
		}
		// A doubled quote is a literal quote; a lone quote terminates.
		if i+1 < len(s) && s[i+1] == '"' {
			b.WriteByte('"')
			i += 2
			continue
		}
		return b.String(), i + 1, true
	}
	return "", 0, false
}

// FormatTime renders a time value the way Praat text files carry numbers:
// shortest decimal form that round-trips, never scientific notation.
func FormatTime(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseTime parses a floating-point time value.
func ParseTime(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
