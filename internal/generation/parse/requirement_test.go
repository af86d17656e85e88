package parse

import (
	"strings"
	"testing"

	"github.com/yungbote/productforge-backend/internal/domain/planning"
)

func TestParseRequirementsWithCriteria(t *testing.T) {
	raw := `<think>plan</think>{"functional_requirements":[
		{"requirement":"Store card tokens","priority":"high"},
		{"requirement":""},
		"Show order total"
	],"acceptance_criteria":[
		{"scenario":"Saved card","given":"a saved card","when":"I pay","then":"no form is shown"},
		{"scenario":"empty"}
	]}`
	res := ParseRequirements(raw)
	if len(res.Requirements) != 2 {
		t.Fatalf("requirements: %+v", res.Requirements)
	}
	if res.Requirements[0].Priority != planning.PriorityHigh || res.Requirements[1].Priority != planning.PriorityMedium {
		t.Fatalf("priorities: %+v", res.Requirements)
	}
	if len(res.Criteria) != 1 || res.Dropped != 2 {
		t.Fatalf("criteria=%+v dropped=%d", res.Criteria, res.Dropped)
	}
	text := FormatCriteria(res.Criteria)
	for _, want := range []string{"Acceptance Criteria:", "- Saved card:", "Given a saved card", "When I pay", "Then no form is shown"} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted criteria missing %q: %q", want, text)
		}
	}
}

func TestParseRequirementsNoLineFallback(t *testing.T) {
	res := ParseRequirements("1. The system shall export CSV\n2. The system shall import CSV")
	if len(res.Requirements) != 0 || len(res.Criteria) != 0 {
		t.Fatalf("requirements must not use line fallback: %+v", res)
	}
}

func TestParseRequirementsTruncates(t *testing.T) {
	res := ParseRequirements(`[{"requirement":"` + strings.Repeat("r", 1500) + `"}]`)
	if len(res.Requirements) != 1 || runeLen(res.Requirements[0].Text) != 1000 {
		t.Fatalf("got %+v", res.Requirements)
	}
}

func TestParseUnknownKind(t *testing.T) {
	if _, err := Parse(Kind("backlog"), "{}"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	v, err := Parse(KindEpic, `{"epics":[{"title":"Alpha"}]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r, ok := v.(EpicResult); !ok || len(r.Candidates) != 1 {
		t.Fatalf("unexpected result %#v", v)
	}
}

func TestNormalizeAndSuggestPriority(t *testing.T) {
	cases := map[string]planning.Priority{
		"Must Have": planning.PriorityCritical,
		"should":    planning.PriorityHigh,
		"Média":     planning.PriorityMedium,
		"Won’t":     planning.PriorityLow,
		"baixa":     planning.PriorityLow,
	}
	for in, want := range cases {
		if got, ok := NormalizePriority(in); !ok || got != want {
			t.Fatalf("%q: want=%s got=%s ok=%v", in, want, got, ok)
		}
	}
	if got, ok := NormalizePriority("whenever"); ok || got != planning.PriorityMedium {
		t.Fatalf("unknown: got=%s ok=%v", got, ok)
	}
	if got, ok := SuggestedPriority(`{"priority":"Should Have","reason":"x"}`); !ok || got != planning.PriorityHigh {
		t.Fatalf("json suggestion: %s %v", got, ok)
	}
	if got, ok := SuggestedPriority("<think>must?</think>This one could wait."); !ok || got != planning.PriorityMedium {
		t.Fatalf("text suggestion: %s %v", got, ok)
	}
}
