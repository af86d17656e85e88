package parse

import (
	"strings"
	"testing"
)

func TestStripReasoningDropsPreamble(t *testing.T) {
	raw := "<think>I should list Secret Epic first</think>\n{\"epics\":[{\"title\":\"Billing\"}]}"
	got := StripReasoning(raw)
	if strings.Contains(got, "Secret Epic") || strings.Contains(got, "</think>") {
		t.Fatalf("reasoning leaked: %q", got)
	}
	res := ParseEpics(raw)
	for _, c := range res.Candidates {
		if strings.Contains(c.Title, "Secret") || strings.Contains(c.Description, "Secret") {
			t.Fatalf("reasoning content in candidate: %+v", c)
		}
	}
	if len(res.Candidates) != 1 || res.Strategy != "strict-json" {
		t.Fatalf("want one strict-json candidate, got %+v", res)
	}
}

func TestStripReasoningLastCloseWins(t *testing.T) {
	raw := "<think>a</think> middle 1. Leaked Line Here <think>b</think>\n1. Real Epic Title"
	res := ParseEpics(raw)
	if len(res.Candidates) != 1 || res.Candidates[0].Title != "Real Epic Title" {
		t.Fatalf("candidates: %+v", res.Candidates)
	}
}

func TestStripReasoningNeedsBothSentinels(t *testing.T) {
	raw := "</think> only a close tag"
	if got := StripReasoning(raw); got != raw {
		t.Fatalf("lone close sentinel must not strip: %q", got)
	}
	raw = "<think> unterminated"
	if got := StripReasoning(raw); got != raw {
		t.Fatalf("lone open sentinel must not strip: %q", got)
	}
}

func TestStripReasoningOnStories(t *testing.T) {
	raw := "<thinking>As a hacker, I want root, so that I win.</thinking>As a buyer, I want to pay, so that I get goods."
	res := ParseStories(raw)
	if len(res.Candidates) != 1 || res.Candidates[0].Actor != "buyer" {
		t.Fatalf("candidates: %+v", res.Candidates)
	}
}
