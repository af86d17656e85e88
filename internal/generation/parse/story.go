package parse

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yungbote/productforge-backend/internal/domain/planning"
)

const (
	placeholderActor   = "user"
	placeholderAction  = "perform this action"
	placeholderBenefit = "get value from the product"

	fallbackBenefit = "I can use the feature"
)

type StoryCandidate struct {
	Actor    string
	Action   string
	Benefit  string
	Priority planning.Priority
}

type StoryResult struct {
	Candidates []StoryCandidate
	Strategy   string
	Dropped    int
}

// storySentence accepts the English and Portuguese connector words.
var storySentence = regexp.MustCompile(
	`(?is)\b(?:as\s+an?|como\s+(?:um|uma))\s+(.+?)\s*,\s*(?:i\s+want|eu\s+quero)\s+(.+?)\s*,\s*(?:so\s+that|para\s+que)\s+(.+?)\s*\.?\s*$`,
)

var storyShape = shape{keys: []string{"user_stories", "stories"}, lineFallback: true}

func ParseStories(raw string) StoryResult {
	ex, ok := run(raw, storyShape)
	if !ok {
		return StoryResult{}
	}
	res := StoryResult{Strategy: ex.strategy}
	if ex.lines != nil {
		for _, line := range ex.lines {
			c, ok := SplitSentence(line)
			if !ok {
				c = StoryCandidate{Actor: placeholderActor, Action: line, Benefit: fallbackBenefit}
			}
			c.Priority = planning.PriorityMedium
			if c, ok = finishStory(c); !ok {
				res.Dropped++
				continue
			}
			res.Candidates = append(res.Candidates, c)
		}
		return res
	}
	for _, item := range ex.items("user_stories", "stories") {
		c, ok := storyFromItem(item)
		if ok {
			c, ok = finishStory(c)
		}
		if !ok {
			res.Dropped++
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res
}

// SplitSentence decomposes "As a X, I want Y, so that Z" into its trimmed parts.
func SplitSentence(s string) (StoryCandidate, bool) {
	m := storySentence.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return StoryCandidate{}, false
	}
	c := StoryCandidate{
		Actor:   strings.TrimSpace(m[1]),
		Action:  strings.TrimSpace(m[2]),
		Benefit: strings.TrimSpace(m[3]),
	}
	if c.Actor == "" || c.Action == "" || c.Benefit == "" {
		return StoryCandidate{}, false
	}
	return c, true
}

func storyFromItem(item gjson.Result) (StoryCandidate, bool) {
	if item.Type == gjson.String {
		c, ok := SplitSentence(item.String())
		c.Priority = planning.PriorityMedium
		return c, ok
	}
	if !item.IsObject() {
		return StoryCandidate{}, false
	}
	prio, _ := field(item, "priority")
	priority, _ := NormalizePriority(prio)

	if sentence, ok := field(item, "story"); ok {
		c, ok := SplitSentence(sentence)
		c.Priority = priority
		return c, ok
	}

	actor, okA := field(item, "as_a", "actor", "persona")
	action, okW := field(item, "i_want", "want", "action")
	benefit, okB := field(item, "so_that", "benefit")
	if !okA || !okW || !okB {
		return StoryCandidate{}, false
	}
	return StoryCandidate{
		Actor:    orPlaceholder(actor, placeholderActor),
		Action:   orPlaceholder(action, placeholderAction),
		Benefit:  orPlaceholder(benefit, placeholderBenefit),
		Priority: priority,
	}, true
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// finishStory truncates and applies the content-safety filter to every field.
func finishStory(c StoryCandidate) (StoryCandidate, bool) {
	c.Actor = truncate(c.Actor, maxActor)
	c.Action = truncate(c.Action, maxAction)
	c.Benefit = truncate(c.Benefit, maxBenefit)
	if !Safe(c.Actor) || !Safe(c.Action) || !Safe(c.Benefit) {
		return c, false
	}
	if c.Priority == "" {
		c.Priority = planning.PriorityMedium
	}
	return c, true
}
