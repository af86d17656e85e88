package parse

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	minEpicLine = 6
	maxEpicLine = 200
	outlineDesc = 150
)

type EpicCandidate struct {
	Title       string
	Description string
}

type EpicResult struct {
	Candidates []EpicCandidate
	Strategy   string
	Dropped    int
}

var epicShape = shape{keys: []string{"epics"}, lineFallback: true}

func ParseEpics(raw string) EpicResult {
	ex, ok := run(raw, epicShape)
	if !ok {
		return EpicResult{}
	}
	res := EpicResult{Strategy: ex.strategy}
	if ex.lines != nil {
		for _, line := range ex.lines {
			if n := runeLen(line); n < minEpicLine || n > maxEpicLine {
				res.Dropped++
				continue
			}
			res.Candidates = append(res.Candidates, EpicCandidate{
				Title:       truncate(line, maxEpicTitle),
				Description: "Generated from outline: " + truncate(line, outlineDesc),
			})
		}
		return res
	}
	for _, item := range ex.items("epics") {
		c, ok := epicFromItem(item)
		if !ok {
			res.Dropped++
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res
}

func epicFromItem(item gjson.Result) (EpicCandidate, bool) {
	var c EpicCandidate
	switch {
	case item.Type == gjson.String:
		c.Title = strings.TrimSpace(item.String())
	case item.IsObject():
		c.Title = firstNonEmpty(item, "name", "title")
		c.Description, _ = field(item, "description")
	default:
		return c, false
	}
	if c.Title == "" {
		return c, false
	}
	c.Title = truncate(c.Title, maxEpicTitle)
	c.Description = truncate(c.Description, maxEpicDescription)
	return c, true
}

func firstNonEmpty(item gjson.Result, aliases ...string) string {
	for _, a := range aliases {
		if v, ok := field(item, a); ok && v != "" {
			return v
		}
	}
	return ""
}
