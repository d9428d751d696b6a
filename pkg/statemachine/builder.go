package statemachine

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Builder provides a fluent API for declaring states and transitions.
// Calls such as Value or Guard apply to the most recently declared state or
// transition; misuse is reported by Build.
//
//	m, err := statemachine.NewBuilder[*Article]().
//	    State("draft").Default().Value(0).
//	    State("published").Value(1).OnEnter(notify).
//	    Transition("publish").From("draft").To("published").
//	    Build(store)
type Builder[D Document] struct {
	name        string
	states      []State[D]
	transitions []Transition[D]

	current any // stateCursor or transitionCursor
	errs    []error
}

type stateCursor int
type transitionCursor int

// NewBuilder creates an empty builder.
func NewBuilder[D Document]() *Builder[D] {
	return &Builder[D]{}
}

// State declares a state and makes it current.
func (b *Builder[D]) State(name string) *Builder[D] {
	b.states = append(b.states, State[D]{Name: name})
	b.current = stateCursor(len(b.states) - 1)
	return b
}

// Default flags the current state as the initial state.
func (b *Builder[D]) Default() *Builder[D] {
	if st := b.currentState("Default"); st != nil {
		st.Default = true
	}
	return b
}

// Value sets the numeric mirror value of the current state.
func (b *Builder[D]) Value(v int) *Builder[D] {
	if st := b.currentState("Value"); st != nil {
		st.Value = lo.ToPtr(v)
	}
	return b
}

// OnEnter sets the enter hook of the current state.
func (b *Builder[D]) OnEnter(h Hook[D]) *Builder[D] {
	if st := b.currentState("OnEnter"); st != nil {
		st.Enter = h
	}
	return b
}

// OnExit sets the exit hook of the current state.
func (b *Builder[D]) OnExit(h Hook[D]) *Builder[D] {
	if st := b.currentState("OnExit"); st != nil {
		st.Exit = h
	}
	return b
}

// Transition declares a transition and makes it current. Its source
// defaults to any state.
func (b *Builder[D]) Transition(name string) *Builder[D] {
	b.transitions = append(b.transitions, Transition[D]{Name: name, From: FromAny()})
	b.current = transitionCursor(len(b.transitions) - 1)
	return b
}

// From sets the source states of the current transition.
func (b *Builder[D]) From(names ...string) *Builder[D] {
	if t := b.currentTransition("From"); t != nil {
		t.From = From(names...)
	}
	return b
}

// FromAny makes the current transition eligible from every state.
func (b *Builder[D]) FromAny() *Builder[D] {
	if t := b.currentTransition("FromAny"); t != nil {
		t.From = FromAny()
	}
	return b
}

// To sets the target state of the current transition.
func (b *Builder[D]) To(name string) *Builder[D] {
	if t := b.currentTransition("To"); t != nil {
		t.To = name
	}
	return b
}

// Guard sets the guard of the current transition.
func (b *Builder[D]) Guard(g Guard[D]) *Builder[D] {
	if t := b.currentTransition("Guard"); t != nil {
		t.Guard = g
	}
	return b
}

// Behavior sets the behavior hook of the current transition.
func (b *Builder[D]) Behavior(h Hook[D]) *Builder[D] {
	if t := b.currentTransition("Behavior"); t != nil {
		t.Behavior = h
	}
	return b
}

// Build validates the declarations and returns the Machine.
func (b *Builder[D]) Build(store Store[D], opts ...Option) (*Machine[D], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if b.name != "" {
		opts = append([]Option{WithName(b.name)}, opts...)
	}
	return New(store, b.states, b.transitions, opts...)
}

// MustBuild is like Build but panics on error.
func (b *Builder[D]) MustBuild(store Store[D], opts ...Option) *Machine[D] {
	m, err := b.Build(store, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return m
}

func (b *Builder[D]) currentState(call string) *State[D] {
	i, ok := b.current.(stateCursor)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("%s: %w", call, ErrBuilderOrder))
		return nil
	}
	return &b.states[i]
}

func (b *Builder[D]) currentTransition(call string) *Transition[D] {
	i, ok := b.current.(transitionCursor)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("%s: %w", call, ErrBuilderOrder))
		return nil
	}
	return &b.transitions[i]
}
