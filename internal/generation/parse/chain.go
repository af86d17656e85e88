package parse

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// shape describes which decoded JSON values a kind accepts: an object
// holding one of keys with an array value, or a bare array.
type shape struct {
	keys         []string
	lineFallback bool
}

func (s shape) accepts(root gjson.Result) bool {
	if root.IsArray() {
		return true
	}
	if !root.IsObject() {
		return false
	}
	for _, k := range s.keys {
		if root.Get(gjson.Escape(k)).IsArray() {
			return true
		}
	}
	return false
}

// extraction is the output of the first strategy that succeeded.
type extraction struct {
	strategy string
	root     gjson.Result
	lines    []string
}

type strategy interface {
	name() string
	extract(text string, sh shape) (extraction, bool)
}

type strictJSON struct{}

func (strictJSON) name() string { return "strict-json" }

func (strictJSON) extract(text string, sh shape) (extraction, bool) {
	return decodeSpan(strings.TrimSpace(text), sh, "strict-json")
}

// spanJSON decodes the substring between the first open and the last close delimiter.
type spanJSON struct {
	open, close byte
	label       string
}

func (s spanJSON) name() string { return s.label }

func (s spanJSON) extract(text string, sh shape) (extraction, bool) {
	i := strings.IndexByte(text, s.open)
	j := strings.LastIndexByte(text, s.close)
	if i < 0 || j <= i {
		return extraction{}, false
	}
	return decodeSpan(text[i:j+1], sh, s.label)
}

func decodeSpan(candidate string, sh shape, label string) (extraction, bool) {
	if candidate == "" || !gjson.Valid(candidate) {
		return extraction{}, false
	}
	root := gjson.Parse(candidate)
	if !sh.accepts(root) {
		return extraction{}, false
	}
	return extraction{strategy: label, root: root}, true
}

var (
	ordinalMarker = regexp.MustCompile(`^\s*(?:\d+\s*[.)]\s*|[-*•]\s+)`)
	structural    = regexp.MustCompile("^(?:[\\[\\]{}]|```)")
)

type lineHeuristic struct{}

func (lineHeuristic) name() string { return "lines" }

func (lineHeuristic) extract(text string, sh shape) (extraction, bool) {
	if !sh.lineFallback {
		return extraction{}, false
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || structural.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(ordinalMarker.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return extraction{}, false
	}
	return extraction{strategy: "lines", lines: out}, true
}

var chain = []strategy{
	strictJSON{},
	spanJSON{open: '{', close: '}', label: "brace-span"},
	spanJSON{open: '[', close: ']', label: "bracket-span"},
	lineHeuristic{},
}

// run strips reasoning, then returns the first successful extraction.
func run(raw string, sh shape) (extraction, bool) {
	text := StripReasoning(raw)
	if strings.TrimSpace(text) == "" {
		return extraction{}, false
	}
	for _, s := range chain {
		if ex, ok := s.extract(text, sh); ok {
			return ex, true
		}
	}
	return extraction{}, false
}

// items returns the candidate array: the root itself, or the first known key holding an array.
func (ex extraction) items(keys ...string) []gjson.Result {
	if ex.root.IsArray() {
		return ex.root.Array()
	}
	for _, k := range keys {
		if v := ex.root.Get(gjson.Escape(k)); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

// field reads the first present alias. ok is false when none exists.
func field(item gjson.Result, aliases ...string) (string, bool) {
	for _, a := range aliases {
		v := item.Get(gjson.Escape(a))
		if v.Exists() && v.Type != gjson.Null {
			return strings.TrimSpace(v.String()), true
		}
	}
	return "", false
}
