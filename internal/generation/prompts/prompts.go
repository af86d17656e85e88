// Package prompts renders the system and user messages for each generation
// operation from the embedded prompts.yaml.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var rawPrompts []byte

const (
	OpEpics        = "generate_epics"
	OpStories      = "generate_stories"
	OpRequirements = "generate_requirements"
	OpPriority     = "suggest_priority"
)

type pair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type file struct {
	Epic        pair `yaml:"epic"`
	Story       pair `yaml:"story"`
	Requirement pair `yaml:"requirement"`
	Priority    pair `yaml:"priority"`
}

type compiled struct {
	system string
	user   *template.Template
}

type Set struct {
	byName map[string]compiled
}

// Load parses the embedded templates. It only fails if prompts.yaml is broken.
func Load() (*Set, error) {
	return parseSet(rawPrompts)
}

func parseSet(raw []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	s := &Set{byName: map[string]compiled{}}
	for name, p := range map[string]pair{
		OpEpics:        f.Epic,
		OpStories:      f.Story,
		OpRequirements: f.Requirement,
		OpPriority:     f.Priority,
	} {
		if strings.TrimSpace(p.System) == "" || strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("prompt %s: system and user are required", name)
		}
		t, err := template.New(name).Option("missingkey=error").Parse(p.User)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		s.byName[name] = compiled{system: strings.TrimSpace(p.System), user: t}
	}
	return s, nil
}

// MustLoad panics on a broken embedded file.
func MustLoad() *Set {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

type ProductContext struct {
	Name             string
	Description      string
	ValueProposition string
	Channels         string
}

type PersonaContext struct {
	Name        string
	Description string
}

type EpicInput struct {
	Product     ProductContext
	Personas    []PersonaContext
	Instruction string
}

type StoryInput struct {
	Product         ProductContext
	Personas        []PersonaContext
	EpicTitle       string
	EpicDescription string
	Instruction     string
}

type RequirementInput struct {
	Story       string
	EpicTitle   string
	ProductName string
	Instruction string
}

type PriorityInput struct {
	Story            string
	ValueProposition string
}

// Prompt is one rendered system/user message pair.
type Prompt struct {
	Operation string
	System    string
	User      string
}

func (s *Set) Epics(in EpicInput) (Prompt, error) {
	return s.render(OpEpics, in, in.Instruction)
}

func (s *Set) Stories(in StoryInput) (Prompt, error) {
	return s.render(OpStories, in, in.Instruction)
}

func (s *Set) Requirements(in RequirementInput) (Prompt, error) {
	return s.render(OpRequirements, in, in.Instruction)
}

func (s *Set) Priority(in PriorityInput) (Prompt, error) {
	return s.render(OpPriority, in, "")
}

func (s *Set) render(op string, data any, instruction string) (Prompt, error) {
	c, ok := s.byName[op]
	if !ok {
		return Prompt{}, fmt.Errorf("prompt %s not loaded", op)
	}
	var buf bytes.Buffer
	if err := c.user.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("render %s: %w", op, err)
	}
	user := strings.TrimSpace(buf.String())
	if ins := strings.TrimSpace(instruction); ins != "" {
		user += "\n\nAdditional instruction: " + ins
	}
	return Prompt{Operation: op, System: applyStyle(c.system), User: user}, nil
}
