// Package parse turns raw model output into candidate artifacts.
//
// Parsing never fails on malformed text: every entry point returns the
// best-effort candidate list, possibly empty. Structured decoding is tried
// first, then brace and bracket spans, then (for epics and stories only) a
// line-oriented heuristic.
package parse

import (
	"fmt"
	"unicode/utf8"
)

// Kind selects the candidate mapping.
type Kind string

const (
	KindEpic        Kind = "epic"
	KindUserStory   Kind = "user_story"
	KindRequirement Kind = "requirement"
)

const (
	maxEpicTitle       = 250
	maxEpicDescription = 1000
	maxActor           = 100
	maxAction          = 500
	maxBenefit         = 500
	maxRequirement     = 1000
)

// Parse dispatches on kind. The returned value is an EpicResult, StoryResult
// or RequirementResult. An unknown kind is a caller bug and the only error.
func Parse(kind Kind, raw string) (any, error) {
	switch kind {
	case KindEpic:
		return ParseEpics(raw), nil
	case KindUserStory:
		return ParseStories(raw), nil
	case KindRequirement:
		return ParseRequirements(raw), nil
	default:
		return nil, fmt.Errorf("parse: unknown artifact kind %q", kind)
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
