package parse

import (
	"strings"
	"testing"
)

func TestParseEpicsStructuredDropsEmptyTitle(t *testing.T) {
	res := ParseEpics(`{"epics":[{"title":"Checkout Flow","description":"desc"},{"title":"","description":"x"}]}`)
	if len(res.Candidates) != 1 {
		t.Fatalf("candidates: want=1 got=%d", len(res.Candidates))
	}
	if res.Candidates[0].Title != "Checkout Flow" || res.Candidates[0].Description != "desc" {
		t.Fatalf("unexpected candidate: %+v", res.Candidates[0])
	}
	if res.Strategy != "strict-json" || res.Dropped != 1 {
		t.Fatalf("strategy=%q dropped=%d", res.Strategy, res.Dropped)
	}
}

func TestParseEpicsTruncatesAndAcceptsNameAlias(t *testing.T) {
	long := strings.Repeat("é", 300)
	desc := strings.Repeat("d", 1200)
	res := ParseEpics(`{"epics":[{"name":"` + long + `","description":"` + desc + `"},{"name":"Search"}]}`)
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates: want=2 got=%d", len(res.Candidates))
	}
	if n := runeLen(res.Candidates[0].Title); n != 250 {
		t.Fatalf("title runes: want=250 got=%d", n)
	}
	if n := runeLen(res.Candidates[0].Description); n != 1000 {
		t.Fatalf("description runes: want=1000 got=%d", n)
	}
	if res.Candidates[1].Title != "Search" || res.Candidates[1].Description != "" {
		t.Fatalf("second: %+v", res.Candidates[1])
	}
}

func TestParseEpicsCountMatchesNonEmptyTitles(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"epics":[`)
	for i := 0; i < 7; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"title":"Epic number ` + strings.Repeat("x", i*60) + `"}`)
	}
	b.WriteString(`]}`)
	res := ParseEpics(b.String())
	if len(res.Candidates) != 7 {
		t.Fatalf("want 7 got %d", len(res.Candidates))
	}
	for _, c := range res.Candidates {
		if runeLen(c.Title) > 250 {
			t.Fatalf("title too long: %d", runeLen(c.Title))
		}
	}
}

func TestParseEpicsBraceSpanInsideProse(t *testing.T) {
	raw := "Sure! Here is the JSON:\n```json\n{\"epics\":[{\"title\":\"Payments\"}]}\n```\nLet me know."
	res := ParseEpics(raw)
	if res.Strategy != "brace-span" || len(res.Candidates) != 1 || res.Candidates[0].Title != "Payments" {
		t.Fatalf("got strategy=%q candidates=%+v", res.Strategy, res.Candidates)
	}
}

func TestParseEpicsBareArray(t *testing.T) {
	res := ParseEpics("Output:\n[{\"title\":\"Onboarding\"}, \"Reporting\"]")
	if res.Strategy != "bracket-span" || len(res.Candidates) != 2 {
		t.Fatalf("got strategy=%q candidates=%+v", res.Strategy, res.Candidates)
	}
	if res.Candidates[1].Title != "Reporting" {
		t.Fatalf("string item title: %q", res.Candidates[1].Title)
	}
}

func TestParseEpicsLineFallbackBounds(t *testing.T) {
	over := "3. Track " + strings.Repeat("Orders And Fulfillment ", 10)
	raw := "1. Manage Inventory\n2. x\n\n" + over
	res := ParseEpics(raw)
	if res.Strategy != "lines" {
		t.Fatalf("strategy: %q", res.Strategy)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].Title != "Manage Inventory" {
		t.Fatalf("candidates: %+v", res.Candidates)
	}
	if res.Dropped != 2 {
		t.Fatalf("dropped: want=2 got=%d", res.Dropped)
	}
	if !strings.HasPrefix(res.Candidates[0].Description, "Generated from outline: ") {
		t.Fatalf("description: %q", res.Candidates[0].Description)
	}
}

// The long outline line below reads as "over two hundred characters" but is
// 188 runes once the ordinal is stripped, so the [6,200] bound keeps it.
func TestParseEpicsLineFallbackKeepsLongButInBoundsLine(t *testing.T) {
	long := "Track Orders and Fulfillment Status Across Warehouses and Partners and Everything Else That Matters A Lot More Than Two Hundred Characters Long For Sure Without Any Doubt At All Whatsoever"
	if n := runeLen(long); n != 188 {
		t.Fatalf("fixture length: want=188 got=%d", n)
	}
	res := ParseEpics("1. Manage Inventory\n2. x\n3. " + long)
	if res.Strategy != "lines" {
		t.Fatalf("strategy: %q", res.Strategy)
	}
	if res.Dropped != 1 {
		t.Fatalf("dropped: want=1 got=%d", res.Dropped)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates: want=2 got=%+v", res.Candidates)
	}
	if res.Candidates[0].Title != "Manage Inventory" {
		t.Fatalf("first title: %q", res.Candidates[0].Title)
	}
	if res.Candidates[1].Title != long {
		t.Fatalf("second title: %q", res.Candidates[1].Title)
	}
	if want := "Generated from outline: " + truncate(long, outlineDesc); res.Candidates[1].Description != want {
		t.Fatalf("second description: %q", res.Candidates[1].Description)
	}
}

func TestParseEpicsWrongShapeFallsThroughToLines(t *testing.T) {
	res := ParseEpics(`{"summary":"nothing useful"}`)
	if len(res.Candidates) != 0 {
		t.Fatalf("structural line should be skipped, got %+v", res.Candidates)
	}
}

func TestParseEpicsEmpty(t *testing.T) {
	if res := ParseEpics("   \n  "); len(res.Candidates) != 0 || res.Strategy != "" {
		t.Fatalf("want empty, got %+v", res)
	}
}
