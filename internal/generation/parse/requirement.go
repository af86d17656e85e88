package parse

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yungbote/productforge-backend/internal/domain/planning"
)

type RequirementCandidate struct {
	Text     string
	Priority planning.Priority
}

// AcceptanceCriterion is one Given/When/Then scenario.
type AcceptanceCriterion struct {
	Scenario string
	Given    string
	When     string
	Then     string
}

type RequirementResult struct {
	Requirements []RequirementCandidate
	Criteria     []AcceptanceCriterion
	Strategy     string
	Dropped      int
}

var requirementShape = shape{
	keys: []string{"functional_requirements", "requirements", "acceptance_criteria"},
}

// ParseRequirements never falls back to lines: an unparseable response yields nothing.
func ParseRequirements(raw string) RequirementResult {
	ex, ok := run(raw, requirementShape)
	if !ok {
		return RequirementResult{}
	}
	res := RequirementResult{Strategy: ex.strategy}

	var reqItems, critItems []gjson.Result
	if ex.root.IsArray() {
		for _, item := range ex.root.Array() {
			if isCriterion(item) {
				critItems = append(critItems, item)
			} else {
				reqItems = append(reqItems, item)
			}
		}
	} else {
		for _, k := range []string{"functional_requirements", "requirements"} {
			if v := ex.root.Get(k); v.IsArray() {
				reqItems = v.Array()
				break
			}
		}
		critItems = ex.root.Get("acceptance_criteria").Array()
	}

	for _, item := range reqItems {
		c, ok := requirementFromItem(item)
		if !ok {
			res.Dropped++
			continue
		}
		res.Requirements = append(res.Requirements, c)
	}
	for _, item := range critItems {
		c, ok := criterionFromItem(item)
		if !ok {
			res.Dropped++
			continue
		}
		res.Criteria = append(res.Criteria, c)
	}
	return res
}

func isCriterion(item gjson.Result) bool {
	return item.IsObject() && (item.Get("given").Exists() || item.Get("then").Exists() || item.Get("scenario").Exists())
}

func requirementFromItem(item gjson.Result) (RequirementCandidate, bool) {
	var text, prio string
	switch {
	case item.Type == gjson.String:
		text = strings.TrimSpace(item.String())
	case item.IsObject():
		text = firstNonEmpty(item, "requirement", "description", "text")
		prio, _ = field(item, "priority")
	default:
		return RequirementCandidate{}, false
	}
	if text == "" {
		return RequirementCandidate{}, false
	}
	p, _ := NormalizePriority(prio)
	return RequirementCandidate{Text: truncate(text, maxRequirement), Priority: p}, true
}

func criterionFromItem(item gjson.Result) (AcceptanceCriterion, bool) {
	if !item.IsObject() {
		return AcceptanceCriterion{}, false
	}
	c := AcceptanceCriterion{}
	c.Scenario, _ = field(item, "scenario")
	c.Given, _ = field(item, "given")
	c.When, _ = field(item, "when")
	c.Then, _ = field(item, "then")
	if c.Given == "" && c.When == "" && c.Then == "" {
		return c, false
	}
	if c.Scenario == "" {
		c.Scenario = "Scenario"
	}
	return c, true
}

// FormatCriteria renders criteria as the free-text block appended to a requirement description.
func FormatCriteria(criteria []AcceptanceCriterion) string {
	if len(criteria) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nAcceptance Criteria:\n")
	for _, c := range criteria {
		fmt.Fprintf(&b, "- %s:\n  Given %s\n  When %s\n  Then %s\n", c.Scenario, c.Given, c.When, c.Then)
	}
	return b.String()
}
