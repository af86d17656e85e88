package parse

import "strings"

// leakageMarkers are fragments that show the model echoed formatting, reasoning
// or structured syntax into a narrative field.
var leakageMarkers = []string{
	"```json", "```",
	"<think>", "</think>",
	"{{", "}}", "{", "}",
	"let me think", "okay, so", "first, let me", "here are", "as an ai", "i'm sorry",
	`"user_stories":`, `"id":`, `"story":`, `"priority":`, `"persona":`,
	"json.loads", "json.dumps", "parse_json", "api_response",
}

// Safe reports whether a story field may be accepted as-is.
func Safe(field string) bool {
	if runeLen(strings.TrimSpace(field)) < 2 {
		return false
	}
	lower := strings.ToLower(field)
	for _, m := range leakageMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}
