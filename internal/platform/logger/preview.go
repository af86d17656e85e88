package logger

import (
	"strings"
	"unicode/utf8"
)

// Preview flattens whitespace and keeps the first n runes of s, for log
// fields that would otherwise carry a whole prompt or model answer.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
