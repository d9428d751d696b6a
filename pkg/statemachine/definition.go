package statemachine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative form of a state and transition table.
// Lists keep declaration order, which decides the default state.
//
//	name: article
//	states:
//	  - name: draft
//	    default: true
//	    value: 0
//	  - name: published
//	    value: 1
//	    enter: notifySubscribers
//	transitions:
//	  - name: publish
//	    from: draft
//	    to: published
//	    guard: hasTitle
//	  - name: archive
//	    from: [draft, published]
//	    to: archived
type Definition struct {
	Name        string                 `yaml:"name"`
	States      []StateDefinition      `yaml:"states"`
	Transitions []TransitionDefinition `yaml:"transitions"`
}

// StateDefinition declares a state; Enter and Exit name hooks in Bindings.
type StateDefinition struct {
	Name    string `yaml:"name"`
	Value   *int   `yaml:"value"`
	Default bool   `yaml:"default"`
	Enter   string `yaml:"enter"`
	Exit    string `yaml:"exit"`
}

// TransitionDefinition declares a transition; Guard and Behavior name
// entries in Bindings.
type TransitionDefinition struct {
	Name     string     `yaml:"name"`
	From     SourceList `yaml:"from"`
	To       string     `yaml:"to"`
	Guard    string     `yaml:"guard"`
	Behavior string     `yaml:"behavior"`
}

// SourceList accepts either a single state name or a list of names.
// A missing value or "*" means any state.
type SourceList []string

func (s *SourceList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = SourceList{node.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*s = names
		return nil
	default:
		return fmt.Errorf("line %d: from must be a state name or a list of names", node.Line)
	}
}

// Bindings resolves the code referenced by name from a Definition.
type Bindings[D any] struct {
	Hooks  map[string]Hook[D]
	Guards map[string]Guard[D]
}

// ParseDefinition decodes a YAML definition and checks its shape.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Join(ErrInvalidDefinition, err)
	}
	if len(def.States) == 0 {
		return nil, errors.Join(ErrInvalidDefinition, ErrNoStates)
	}
	return &def, nil
}

// LoadDefinition reads and parses a YAML definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition %q: %w", path, err)
	}
	return ParseDefinition(data)
}

// Definition adds the states and transitions of def to the builder,
// resolving hook and guard names through bindings.
func (b *Builder[D]) Definition(def *Definition, bindings Bindings[D]) *Builder[D] {
	if def == nil {
		b.errs = append(b.errs, ErrInvalidDefinition)
		return b
	}
	if def.Name != "" {
		b.name = def.Name
	}

	for _, s := range def.States {
		b.State(s.Name)
		if s.Default {
			b.Default()
		}
		if s.Value != nil {
			b.Value(*s.Value)
		}
		if s.Enter != "" {
			b.OnEnter(b.hook(bindings, s.Enter))
		}
		if s.Exit != "" {
			b.OnExit(b.hook(bindings, s.Exit))
		}
	}

	for _, t := range def.Transitions {
		b.Transition(t.Name).From(t.From...).To(t.To)
		if t.Guard != "" {
			g, ok := bindings.Guards[t.Guard]
			if !ok {
				b.errs = append(b.errs, fmt.Errorf("guard %q: %w", t.Guard, ErrUnknownBinding))
			}
			b.Guard(g)
		}
		if t.Behavior != "" {
			b.Behavior(b.hook(bindings, t.Behavior))
		}
	}

	return b
}

func (b *Builder[D]) hook(bindings Bindings[D], name string) Hook[D] {
	h, ok := bindings.Hooks[name]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("hook %q: %w", name, ErrUnknownBinding))
	}
	return h
}
