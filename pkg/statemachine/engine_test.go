package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
	"github.com/dmitrymomot/docstate/pkg/validator"
)

func TestFire_PublishingScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := statemachine.NewMemoryStore[*article]()
	m := publishing(store, nil)

	doc := m.Init(&article{ID: "a1"})
	assert.Equal(t, "draft", doc.State)
	value, ok := doc.CurrentStateValue()
	require.True(t, ok)
	assert.Equal(t, 0, value)

	_, err := m.Fire(ctx, "publish", doc)
	require.NoError(t, err)
	assert.Equal(t, "published", doc.State)
	require.NotNil(t, doc.StateValue)
	assert.Equal(t, 1, *doc.StateValue)

	_, err = m.Fire(ctx, "publish", doc)
	require.Error(t, err)
	assert.True(t, statemachine.IsInvalidTransitionError(err))
	var invalid *statemachine.ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "publish", invalid.Transition)
	assert.Equal(t, "published", invalid.State)
	assert.Equal(t, "published", doc.State)

	_, err = m.Fire(ctx, "archive", doc)
	require.NoError(t, err)
	assert.Equal(t, "archived", doc.State)
	assert.Equal(t, 2, *doc.StateValue)

	assert.Equal(t, 2, store.Saves())
}

func TestFire_SetSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		state   string
		allowed bool
	}{
		{"draft", true},
		{"published", true},
		{"archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			t.Parallel()
			m := publishing(statemachine.NewMemoryStore[*article](), nil)
			doc := &article{ID: "a", Fields: statemachine.Fields{State: tt.state}}

			_, err := m.Fire(ctx, "archive", doc)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "archived", doc.State)
				return
			}
			assert.True(t, statemachine.IsInvalidTransitionError(err))
			assert.Equal(t, tt.state, doc.State)
		})
	}
}

func TestFire_SingleSourceRejectsOtherStates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, state := range []string{"published", "archived"} {
		m := publishing(statemachine.NewMemoryStore[*article](), nil)
		doc := &article{ID: "a", Fields: statemachine.Fields{State: state}}

		_, err := m.Fire(ctx, "publish", doc)
		assert.True(t, statemachine.IsInvalidTransitionError(err), state)
		assert.Equal(t, state, doc.State)
		assert.Nil(t, doc.StateValue)
	}
}

func TestFire_LazyDefaultKeptOnFailure(t *testing.T) {
	t.Parallel()

	store := statemachine.NewMemoryStore[*article]()
	m := statemachine.NewBuilder[*article]().
		State("new").
		State("open").Default().Value(5).
		State("closed").Value(9).
		Transition("close").From("closed").To("closed").
		MustBuild(store)

	doc := &article{ID: "a"}
	_, err := m.Fire(context.Background(), "close", doc)
	assert.True(t, statemachine.IsInvalidTransitionError(err))
	assert.Equal(t, "open", doc.State, "default must be assigned before eligibility check")
	require.NotNil(t, doc.StateValue)
	assert.Equal(t, 5, *doc.StateValue)
	assert.Zero(t, store.Saves())
}

func TestFire_WildcardIsReentrant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rec := &recorder{}
	store := statemachine.NewMemoryStore[*article]()
	m := statemachine.NewBuilder[*article]().
		State("draft").
		State("flagged").OnEnter(rec.hook("enter:flagged")).
		Transition("flag").FromAny().To("flagged").Behavior(rec.hook("behavior:flag")).
		MustBuild(store)

	doc := m.Init(&article{ID: "a"})
	for range 3 {
		_, err := m.Fire(ctx, "flag", doc)
		require.NoError(t, err)
		assert.Equal(t, "flagged", doc.State)
	}

	assert.Equal(t, 3, store.Saves())
	assert.Len(t, rec.list(), 6)
	assert.Nil(t, doc.StateValue, "machine without values must not set the mirror")
}

func TestFire_PredicateGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	errNoTitle := errors.New("title required")

	var observed string
	rec := &recorder{}
	store := statemachine.NewMemoryStore[*article]()
	m := statemachine.NewBuilder[*article]().
		State("draft").Value(0).OnExit(rec.hook("exit:draft")).
		State("published").Value(1).OnEnter(rec.hook("enter:published")).
		Transition("publish").From("draft").To("published").
		Guard(statemachine.GuardFunc(func(_ context.Context, a *article) error {
			observed = a.State
			if a.Title == "" {
				return errNoTitle
			}
			return nil
		})).
		Behavior(rec.hook("behavior:publish")).
		MustBuild(store)

	doc := m.Init(&article{ID: "a"})

	_, err := m.Fire(ctx, "publish", doc)
	require.Error(t, err)
	assert.True(t, statemachine.IsGuardFailedError(err))
	assert.ErrorIs(t, err, errNoTitle, "guard detail must be passed through")
	assert.Equal(t, "published", observed, "guard must observe the target state")

	assert.Equal(t, "draft", doc.State, "state must be restored")
	assert.Equal(t, 0, *doc.StateValue)
	assert.Zero(t, store.Saves(), "guard failure must not persist")
	assert.Empty(t, rec.list(), "no hook may run on failure")

	doc.Title = "Hello"
	_, err = m.Fire(ctx, "publish", doc)
	require.NoError(t, err)
	assert.Equal(t, "published", doc.State)
	assert.Equal(t, []string{"exit:draft", "behavior:publish", "enter:published"}, rec.list())
}

func TestFire_FieldGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newMachine := func(store statemachine.Store[*article]) *statemachine.Machine[*article] {
		return statemachine.NewBuilder[*article]().
			State("open").
			State("flagged").
			Transition("anyToFlagged").FromAny().To("flagged").
			Guard(statemachine.GuardFields(map[string]statemachine.FieldCheck[*article]{
				"name": func(_ context.Context, a *article) string {
					if a.Name == "" {
						return "name required"
					}
					return ""
				},
				"title": func(_ context.Context, a *article) string {
					return validator.Reason(validator.MaxLen("title", a.Title, 10))
				},
			})).
			MustBuild(store)
	}

	t.Run("collects failing fields", func(t *testing.T) {
		t.Parallel()
		store := statemachine.NewMemoryStore[*article]()
		m := newMachine(store)
		doc := &article{ID: "a", Title: "a very long title", Fields: statemachine.Fields{State: "open"}}

		_, err := m.Fire(ctx, "anyToFlagged", doc)
		require.Error(t, err)
		assert.True(t, statemachine.IsGuardFailedError(err))

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 2)
		assert.Equal(t, []string{"name", "title"}, verrs.Fields())
		assert.Equal(t, []string{"name required"}, verrs.Get("name"))

		assert.Equal(t, "open", doc.State)
		assert.Zero(t, store.Saves())
	})

	t.Run("passes when every check is empty", func(t *testing.T) {
		t.Parallel()
		store := statemachine.NewMemoryStore[*article]()
		m := newMachine(store)
		doc := &article{ID: "a", Name: "Ann", Title: "short", Fields: statemachine.Fields{State: "open"}}

		_, err := m.Fire(ctx, "anyToFlagged", doc)
		require.NoError(t, err)
		assert.Equal(t, "flagged", doc.State)
		assert.Equal(t, 1, store.Saves())
	})
}

func TestFire_PersistenceFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rec := &recorder{}
	store := statemachine.NewMemoryStore[*article]()
	m := publishing(store, rec)
	doc := m.Init(&article{ID: "a"})

	store.FailNextSave(errDisk)
	_, err := m.Fire(ctx, "publish", doc)
	require.Error(t, err)
	assert.True(t, statemachine.IsPersistenceFailedError(err))
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, "draft", doc.State)
	assert.Equal(t, 0, *doc.StateValue)
	assert.Empty(t, rec.list())

	_, err = m.Fire(ctx, "publish", doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"exit:draft", "behavior:publish", "enter:published"}, rec.list())
}

func TestFire_HookOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rec := &recorder{}
	m := publishing(statemachine.NewMemoryStore[*article](), rec)
	doc := m.Init(&article{ID: "a"})

	_, err := m.Fire(ctx, "publish", doc)
	require.NoError(t, err)
	_, err = m.Fire(ctx, "archive", doc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"exit:draft", "behavior:publish", "enter:published",
		"exit:published", "behavior:archive", "enter:archived",
	}, rec.list())
}

func TestFire_UnknownTransition(t *testing.T) {
	t.Parallel()

	m := publishing(statemachine.NewMemoryStore[*article](), nil)
	doc := m.Init(&article{ID: "a"})

	got, err := m.Fire(context.Background(), "explode", doc)
	assert.ErrorIs(t, err, statemachine.ErrUnknownTransition)
	assert.Same(t, doc, got)
	assert.Equal(t, "draft", doc.State)
}

func TestFire_ContextCanceled(t *testing.T) {
	t.Parallel()

	store := statemachine.NewMemoryStore[*article]()
	m := publishing(store, nil)
	doc := m.Init(&article{ID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Fire(ctx, "publish", doc)
	assert.True(t, statemachine.IsPersistenceFailedError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "draft", doc.State)
}

func TestFire_TargetWithoutValueClearsMirror(t *testing.T) {
	t.Parallel()

	m := statemachine.NewBuilder[*article]().
		State("draft").Default().Value(3).
		State("deleted").
		Transition("delete").From("draft").To("deleted").
		MustBuild(statemachine.NewMemoryStore[*article]())

	doc := m.Init(&article{ID: "a"})
	require.NotNil(t, doc.StateValue)

	_, err := m.Fire(context.Background(), "delete", doc)
	require.NoError(t, err)
	assert.Nil(t, doc.StateValue)
}
