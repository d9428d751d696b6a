package statemachine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dmitrymomot/docstate/pkg/logger"
)

// TransitionFunc applies one bound transition to a document.
type TransitionFunc[D Document] func(ctx context.Context, doc D) (D, error)

// TransitionByIDFunc looks a document up and applies one bound transition.
type TransitionByIDFunc[D Document] func(ctx context.Context, id string) (D, error)

// Transition returns the instance operation bound to the named transition.
func (m *Machine[D]) Transition(name string) TransitionFunc[D] {
	return func(ctx context.Context, doc D) (D, error) {
		return m.Fire(ctx, name, doc)
	}
}

// Transitions returns the instance operation of every declared transition.
func (m *Machine[D]) Transitions() map[string]TransitionFunc[D] {
	out := make(map[string]TransitionFunc[D], len(m.order))
	for _, name := range m.order {
		out[name] = m.Transition(name)
	}
	return out
}

// TransitionByID returns the collection operation bound to the named transition.
func (m *Machine[D]) TransitionByID(name string) TransitionByIDFunc[D] {
	return func(ctx context.Context, id string) (D, error) {
		return m.FireByID(ctx, name, id)
	}
}

// TransitionsByID returns the collection operation of every declared transition.
func (m *Machine[D]) TransitionsByID() map[string]TransitionByIDFunc[D] {
	out := make(map[string]TransitionByIDFunc[D], len(m.order))
	for _, name := range m.order {
		out[name] = m.TransitionByID(name)
	}
	return out
}

// FireByID loads the document with the given id and applies the named
// transition to it. It returns ErrNotFound when the store has no such
// document and *ErrLookupFailed when the lookup itself fails; no document
// is touched in either case.
func (m *Machine[D]) FireByID(ctx context.Context, name, id string) (D, error) {
	var zero D
	start := time.Now()

	if _, ok := m.transitions[name]; !ok {
		err := fmt.Errorf("%w: '%s'", ErrUnknownTransition, name)
		m.metrics.observe(m.name, name, "", "", outcomeOf(err), time.Since(start))
		return zero, err
	}

	doc, err := m.Find(ctx, id)
	if err != nil {
		m.metrics.observe(m.name, name, "", m.transitions[name].To, outcomeOf(err), time.Since(start))
		return zero, err
	}

	return m.Fire(ctx, name, doc)
}

// Find loads one document through the machine's store, normalising the
// not-found and lookup failure cases.
func (m *Machine[D]) Find(ctx context.Context, id string) (D, error) {
	var zero D

	doc, err := m.store.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return zero, fmt.Errorf("document '%s': %w", id, ErrNotFound)
	case err != nil:
		m.logger.WarnContext(ctx, "document lookup failed", logger.DocumentID(id), logger.Error(err))
		return zero, &ErrLookupFailed{ID: id, Err: err}
	case isNil(doc):
		return zero, fmt.Errorf("document '%s': %w", id, ErrNotFound)
	}

	return doc, nil
}

// CanFire reports whether the named transition is eligible for doc's current
// state. It does not evaluate the guard and does not modify doc.
func (m *Machine[D]) CanFire(doc D, name string) bool {
	t, ok := m.transitions[name]
	if !ok {
		return false
	}
	current := doc.CurrentState()
	if current == "" {
		current = m.defaultState
	}
	return t.From.Matches(current)
}

// Available returns the transitions eligible for doc's current state, in
// declaration order.
func (m *Machine[D]) Available(doc D) []string {
	var names []string
	for _, name := range m.order {
		if m.CanFire(doc, name) {
			names = append(names, name)
		}
	}
	return names
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
