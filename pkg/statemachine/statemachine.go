package statemachine

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Field names used by Fields and reported by Machine.Schema.
const (
	FieldState      = "state"
	FieldStateValue = "stateValue"
)

// Wildcard is the source name meaning "any current state".
const Wildcard = "*"

// Document is a persisted entity driven by a Machine. Embedding Fields
// provides every method except DocumentID.
type Document interface {
	DocumentID() string
	CurrentState() string
	SetState(name string)
	CurrentStateValue() (int, bool)
	SetStateValue(value *int)
}

// Fields carries the machine-managed attributes of a document.
type Fields struct {
	State      string `json:"state" bson:"state"`
	StateValue *int   `json:"stateValue,omitempty" bson:"stateValue,omitempty"`
}

func (f *Fields) CurrentState() string {
	return f.State
}

func (f *Fields) SetState(name string) {
	f.State = name
}

func (f *Fields) CurrentStateValue() (int, bool) {
	if f.StateValue == nil {
		return 0, false
	}
	return *f.StateValue, true
}

// SetStateValue stores a copy of value; nil clears the mirror.
func (f *Fields) SetStateValue(value *int) {
	if value == nil {
		f.StateValue = nil
		return
	}
	v := *value
	f.StateValue = &v
}

// Saver persists a document.
type Saver[D any] interface {
	Save(ctx context.Context, doc D) error
}

// Finder loads a single document by identifier. Implementations must return
// an error matching ErrNotFound when no document exists.
type Finder[D any] interface {
	FindByID(ctx context.Context, id string) (D, error)
}

// Store is the persistence collaborator of a Machine.
type Store[D any] interface {
	Saver[D]
	Finder[D]
}

// Hook is a side effect run after a transition has been persisted.
type Hook[D any] func(ctx context.Context, doc D)

// FieldCheck validates one field of a document. A non-empty result is the
// failure reason.
type FieldCheck[D any] func(ctx context.Context, doc D) string

// State describes one named state.
type State[D any] struct {
	Name    string
	Value   *int // optional numeric mirror value
	Default bool
	Enter   Hook[D]
	Exit    Hook[D]
}

// Transition describes one named transition.
type Transition[D any] struct {
	Name     string
	From     Source
	To       string
	Guard    Guard[D]
	Behavior Hook[D]
}

type sourceKind uint8

const (
	sourceAny sourceKind = iota
	sourceOne
	sourceSet
)

// Source is the set of states a transition may start from: any state, a
// single state, or a set of states. The zero value matches any state.
type Source struct {
	kind  sourceKind
	names []string
}

// FromAny matches every current state.
func FromAny() Source {
	return Source{kind: sourceAny}
}

// From matches the given state names. A single Wildcard argument is
// equivalent to FromAny.
func From(names ...string) Source {
	names = lo.Uniq(names)
	switch {
	case len(names) == 0, len(names) == 1 && names[0] == Wildcard:
		return FromAny()
	case len(names) == 1:
		return Source{kind: sourceOne, names: names}
	default:
		return Source{kind: sourceSet, names: names}
	}
}

// resolve returns the source state matching current. Any resolves to current
// itself, One to its only name, Set to the member equal to current.
func (s Source) resolve(current string) (string, bool) {
	switch s.kind {
	case sourceOne:
		return s.names[0], s.names[0] == current
	case sourceSet:
		if lo.Contains(s.names, current) {
			return current, true
		}
		return "", false
	default:
		return current, true
	}
}

// Matches reports whether a document in state current may take the transition.
func (s Source) Matches(current string) bool {
	_, ok := s.resolve(current)
	return ok
}

// IsAny reports whether the source is the wildcard.
func (s Source) IsAny() bool {
	return s.kind == sourceAny
}

// Names returns the explicit state names; nil for the wildcard.
func (s Source) Names() []string {
	return slices.Clone(s.names)
}

func (s Source) String() string {
	if s.kind == sourceAny {
		return Wildcard
	}
	return strings.Join(s.names, "|")
}

type guardKind uint8

const (
	guardNone guardKind = iota
	guardPredicate
	guardFields
)

// Guard is a precondition evaluated after the document has been moved to the
// target state and before it is saved. It is either a predicate or a map of
// per-field checks. The zero value always passes.
type Guard[D any] struct {
	kind      guardKind
	predicate func(ctx context.Context, doc D) error
	fields    map[string]FieldCheck[D]
	order     []string
}

// GuardFunc builds a predicate guard. A non-nil error rejects the transition
// and becomes the failure detail.
func GuardFunc[D any](fn func(ctx context.Context, doc D) error) Guard[D] {
	if fn == nil {
		return Guard[D]{}
	}
	return Guard[D]{kind: guardPredicate, predicate: fn}
}

// GuardFields builds a per-field guard. Every check runs, in field name
// order; each non-empty reason is recorded against its field.
func GuardFields[D any](checks map[string]FieldCheck[D]) Guard[D] {
	checks = lo.PickBy(checks, func(_ string, fn FieldCheck[D]) bool { return fn != nil })
	if len(checks) == 0 {
		return Guard[D]{}
	}
	order := lo.Keys(checks)
	slices.Sort(order)
	return Guard[D]{kind: guardFields, fields: checks, order: order}
}

// IsZero reports whether the guard has nothing to evaluate.
func (g Guard[D]) IsZero() bool {
	return g.kind == guardNone
}
