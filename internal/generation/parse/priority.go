package parse

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yungbote/productforge-backend/internal/domain/planning"
)

var priorityWords = map[string]planning.Priority{
	"critical": planning.PriorityCritical, "crítica": planning.PriorityCritical, "critica": planning.PriorityCritical,
	"urgent": planning.PriorityCritical, "must": planning.PriorityCritical, "must have": planning.PriorityCritical,
	"high": planning.PriorityHigh, "alta": planning.PriorityHigh, "should": planning.PriorityHigh, "should have": planning.PriorityHigh,
	"medium": planning.PriorityMedium, "média": planning.PriorityMedium, "media": planning.PriorityMedium,
	"normal": planning.PriorityMedium, "could": planning.PriorityMedium, "could have": planning.PriorityMedium,
	"low": planning.PriorityLow, "baixa": planning.PriorityLow, "won't": planning.PriorityLow, "wont": planning.PriorityLow,
	"won't have": planning.PriorityLow, "wont have": planning.PriorityLow,
}

var priorityNoise = strings.NewReplacer("’", "'", "-", " ", "_", " ", ".", "", "\"", "")

// NormalizePriority maps English, Portuguese and MoSCoW wording onto the four
// levels. Unknown or empty input yields medium with ok=false.
func NormalizePriority(s string) (planning.Priority, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(priorityNoise.Replace(s))), " ")
	if p, ok := priorityWords[key]; ok {
		return p, true
	}
	return planning.PriorityMedium, false
}

var moscowToken = regexp.MustCompile(`(?i)\b(must|should|could|won['’]?t)\b`)

// SuggestedPriority reads a MoSCoW classification from a model answer: a JSON
// "priority" field when present, else the first MoSCoW word in the text.
func SuggestedPriority(raw string) (planning.Priority, bool) {
	text := StripReasoning(raw)
	if i, j := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); i >= 0 && j > i && gjson.Valid(text[i:j+1]) {
		for _, k := range []string{"priority_analysis.priority", "priority", "moscow", "classification"} {
			if v := gjson.Get(text[i:j+1], k); v.Exists() {
				if p, ok := NormalizePriority(v.String()); ok {
					return p, true
				}
				if m := moscowToken.FindString(v.String()); m != "" {
					return NormalizePriority(m)
				}
			}
		}
	}
	if m := moscowToken.FindString(text); m != "" {
		return NormalizePriority(m)
	}
	return planning.PriorityMedium, false
}
