package statemachine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/dmitrymomot/docstate/pkg/logger"
)

const defaultMachineName = "default"

// Machine binds a state table and a transition table to a document type and
// its store. It is immutable after New and safe for concurrent use; every
// document shares the same tables.
type Machine[D Document] struct {
	name  string
	store Store[D]

	states      []State[D]
	stateIndex  map[string]int
	transitions map[string]*Transition[D]
	order       []string

	defaultState string
	hasValue     bool

	logger  *slog.Logger
	metrics *metrics
}

// New validates the tables and returns a Machine. States keep their
// declaration order; it decides the default state when none is flagged.
func New[D Document](store Store[D], states []State[D], transitions []Transition[D], opts ...Option) (*Machine[D], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	s := &settings{name: defaultMachineName}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}

	m := &Machine[D]{
		name:        s.name,
		store:       store,
		states:      slices.Clone(states),
		stateIndex:  make(map[string]int, len(states)),
		transitions: make(map[string]*Transition[D], len(transitions)),
		logger:      s.logger.With(logger.Component("statemachine"), logger.Machine(s.name)),
	}

	for i, st := range m.states {
		if st.Name == "" {
			return nil, fmt.Errorf("state[%d]: %w", i, ErrEmptyName)
		}
		if _, ok := m.stateIndex[st.Name]; ok {
			return nil, fmt.Errorf("state '%s': %w", st.Name, ErrDuplicateState)
		}
		if st.Value != nil {
			m.states[i].Value = lo.ToPtr(*st.Value)
		}
		m.stateIndex[st.Name] = i
	}

	for i := range transitions {
		t := transitions[i]
		if t.Name == "" {
			return nil, fmt.Errorf("transition[%d]: %w", i, ErrEmptyName)
		}
		if _, ok := m.transitions[t.Name]; ok {
			return nil, fmt.Errorf("transition '%s': %w", t.Name, ErrDuplicateTransition)
		}
		if _, ok := m.stateIndex[t.To]; !ok {
			return nil, fmt.Errorf("transition '%s' targets '%s': %w", t.Name, t.To, ErrUnknownState)
		}
		for _, from := range t.From.names {
			if _, ok := m.stateIndex[from]; !ok {
				return nil, fmt.Errorf("transition '%s' starts from '%s': %w", t.Name, from, ErrUnknownState)
			}
		}
		m.transitions[t.Name] = &t
		m.order = append(m.order, t.Name)
	}

	m.defaultState = DefaultState(m.states)
	m.hasValue = m.states[m.stateIndex[m.defaultState]].Value != nil

	if s.registerer != nil {
		mt, err := newMetrics(s.registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		m.metrics = mt
	}

	return m, nil
}

// MustNew is like New but panics on error.
func MustNew[D Document](store Store[D], states []State[D], transitions []Transition[D], opts ...Option) *Machine[D] {
	m, err := New(store, states, transitions, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// DefaultState returns the first state flagged Default, or the first declared
// state when none is flagged. It returns "" for an empty table.
func DefaultState[D any](states []State[D]) string {
	if st, ok := lo.Find(states, func(s State[D]) bool { return s.Default }); ok {
		return st.Name
	}
	if len(states) == 0 {
		return ""
	}
	return states[0].Name
}

// Name returns the machine name.
func (m *Machine[D]) Name() string {
	return m.name
}

// StateNames returns the declared state names in declaration order.
func (m *Machine[D]) StateNames() []string {
	return lo.Map(m.states, func(s State[D], _ int) string { return s.Name })
}

// TransitionNames returns the declared transition names in declaration order.
func (m *Machine[D]) TransitionNames() []string {
	return slices.Clone(m.order)
}

// DefaultStateName returns the state assigned to new documents.
func (m *Machine[D]) DefaultStateName() string {
	return m.defaultState
}

// HasStateValue reports whether documents carry the numeric stateValue
// mirror. This is the case when the default state declares a value.
func (m *Machine[D]) HasStateValue() bool {
	return m.hasValue
}

// StateValue returns the numeric value declared for the named state.
func (m *Machine[D]) StateValue(name string) (int, bool) {
	i, ok := m.stateIndex[name]
	if !ok || m.states[i].Value == nil {
		return 0, false
	}
	return *m.states[i].Value, true
}

// IsState reports whether name is a declared state.
func (m *Machine[D]) IsState(name string) bool {
	_, ok := m.stateIndex[name]
	return ok
}

// Init assigns the default state, and the mirror value when in use, to a
// newly created document. Documents that already have a state are left alone.
func (m *Machine[D]) Init(doc D) D {
	if doc.CurrentState() == "" {
		m.assignDefault(doc)
	}
	return doc
}

func (m *Machine[D]) assignDefault(doc D) {
	doc.SetState(m.defaultState)
	if m.hasValue {
		if _, ok := doc.CurrentStateValue(); !ok {
			doc.SetStateValue(m.valuePtr(m.defaultState))
		}
	}
}

func (m *Machine[D]) valuePtr(state string) *int {
	if i, ok := m.stateIndex[state]; ok {
		return m.states[i].Value
	}
	return nil
}

func (m *Machine[D]) state(name string) *State[D] {
	if i, ok := m.stateIndex[name]; ok {
		return &m.states[i]
	}
	return nil
}

// StateField describes the `state` attribute of the document schema.
type StateField struct {
	Name    string   `json:"name"`
	Enum    []string `json:"enum"`
	Default string   `json:"default"`
}

// StateValueField describes the optional `stateValue` attribute.
type StateValueField struct {
	Name    string         `json:"name"`
	Default int            `json:"default"`
	Values  map[string]int `json:"values"`
}

// Schema lists the attributes a persistence layer should declare for
// documents driven by the machine.
type Schema struct {
	State      StateField       `json:"state"`
	StateValue *StateValueField `json:"stateValue,omitempty"`
}

// Schema returns the field declarations for the machine's documents.
func (m *Machine[D]) Schema() Schema {
	s := Schema{
		State: StateField{
			Name:    FieldState,
			Enum:    m.StateNames(),
			Default: m.defaultState,
		},
	}
	if !m.hasValue {
		return s
	}

	values := make(map[string]int, len(m.states))
	for _, st := range m.states {
		if st.Value != nil {
			values[st.Name] = *st.Value
		}
	}
	s.StateValue = &StateValueField{
		Name:    FieldStateValue,
		Default: values[m.defaultState],
		Values:  values,
	}
	return s
}
