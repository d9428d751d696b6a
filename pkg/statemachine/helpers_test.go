package statemachine_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

type article struct {
	ID    string
	Name  string
	Title string
	statemachine.Fields
}

func (a *article) DocumentID() string { return a.ID }

// recorder captures hook invocations in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) hook(name string) statemachine.Hook[*article] {
	return func(ctx context.Context, _ *article) {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// lookupFailingStore fails every lookup with err.
type lookupFailingStore struct {
	*statemachine.MemoryStore[*article]
	err error
}

func (s *lookupFailingStore) FindByID(context.Context, string) (*article, error) {
	return nil, s.err
}

// nilFindStore reports no error and no document.
type nilFindStore struct {
	*statemachine.MemoryStore[*article]
}

func (s *nilFindStore) FindByID(context.Context, string) (*article, error) {
	return nil, nil
}

var errDisk = errors.New("disk full")

// publishing builds the draft/published/archived machine with hooks recorded by rec.
func publishing(store statemachine.Store[*article], rec *recorder, opts ...statemachine.Option) *statemachine.Machine[*article] {
	if rec == nil {
		rec = &recorder{}
	}
	return statemachine.NewBuilder[*article]().
		State("draft").Default().Value(0).OnExit(rec.hook("exit:draft")).OnEnter(rec.hook("enter:draft")).
		State("published").Value(1).OnExit(rec.hook("exit:published")).OnEnter(rec.hook("enter:published")).
		State("archived").Value(2).OnEnter(rec.hook("enter:archived")).
		Transition("publish").From("draft").To("published").Behavior(rec.hook("behavior:publish")).
		Transition("archive").From("draft", "published").To("archived").Behavior(rec.hook("behavior:archive")).
		MustBuild(store, opts...)
}
