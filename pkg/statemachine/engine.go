package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/docstate/pkg/logger"
	"github.com/dmitrymomot/docstate/pkg/validator"
)

// Fire applies the named transition to doc and saves it.
//
// The document is moved to the target state before the guard runs, so guards
// observe the new state. When the guard rejects the transition or the save
// fails, state and stateValue are restored to their previous values and no
// hook runs. After a successful save the exit hook of the previous state,
// the transition behavior and the enter hook of the new state run in that
// order.
//
// A document without a state is first given the default state; that
// assignment is kept even when the transition fails.
func (m *Machine[D]) Fire(ctx context.Context, name string, doc D) (D, error) {
	start := time.Now()

	t, ok := m.transitions[name]
	if !ok {
		err := fmt.Errorf("%w: '%s'", ErrUnknownTransition, name)
		m.metrics.observe(m.name, name, "", "", outcomeOf(err), time.Since(start))
		return doc, err
	}

	from, err := m.apply(ctx, t, doc)
	m.metrics.observe(m.name, name, from, t.To, outcomeOf(err), time.Since(start))
	return doc, err
}

func (m *Machine[D]) apply(ctx context.Context, t *Transition[D], doc D) (string, error) {
	if doc.CurrentState() == "" {
		m.assignDefault(doc)
	}
	current := doc.CurrentState()

	log := m.logger.With(
		logger.Transition(t.Name),
		logger.FromState(current),
		logger.ToState(t.To),
		logger.DocumentID(doc.DocumentID()),
	)

	from, ok := t.From.resolve(current)
	if !ok || from != current {
		log.DebugContext(ctx, "transition not allowed from current state")
		return current, &ErrInvalidTransition{Transition: t.Name, State: current}
	}

	prevValue, hadValue := doc.CurrentStateValue()
	restore := func() {
		doc.SetState(from)
		if !m.hasValue {
			return
		}
		if hadValue {
			doc.SetStateValue(&prevValue)
		} else {
			doc.SetStateValue(nil)
		}
	}

	doc.SetState(t.To)

	if detail := m.evaluateGuard(ctx, t.Guard, doc); detail != nil {
		restore()
		log.DebugContext(ctx, "transition rejected by guard", logger.Error(detail))
		return from, &ErrGuardFailed{Transition: t.Name, State: t.To, Err: detail}
	}

	if m.hasValue {
		doc.SetStateValue(m.valuePtr(t.To))
	}

	if err := m.store.Save(ctx, doc); err != nil {
		restore()
		log.WarnContext(ctx, "failed to save document after transition", logger.Error(err))
		return from, &ErrPersistenceFailed{Transition: t.Name, Err: err}
	}

	if exit := m.state(from); exit != nil && exit.Exit != nil {
		exit.Exit(ctx, doc)
	}
	if t.Behavior != nil {
		t.Behavior(ctx, doc)
	}
	if enter := m.state(t.To); enter != nil && enter.Enter != nil {
		enter.Enter(ctx, doc)
	}

	log.DebugContext(ctx, "transition applied")
	return from, nil
}

// evaluateGuard returns the guard's failure detail, or nil when it passes.
func (m *Machine[D]) evaluateGuard(ctx context.Context, g Guard[D], doc D) error {
	switch g.kind {
	case guardPredicate:
		return g.predicate(ctx, doc)
	case guardFields:
		var errs validator.ValidationErrors
		for _, field := range g.order {
			if reason := g.fields[field](ctx, doc); reason != "" {
				errs.Invalidate(field, reason)
			}
		}
		if errs.IsEmpty() {
			return nil
		}
		return errs
	default:
		return nil
	}
}
