package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

func TestFireByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies transition to stored document", func(t *testing.T) {
		t.Parallel()
		store := statemachine.NewMemoryStore[*article]()
		m := publishing(store, nil)
		stored := m.Init(&article{ID: "a1"})
		require.NoError(t, store.Save(ctx, stored))

		doc, err := m.FireByID(ctx, "publish", "a1")
		require.NoError(t, err)
		assert.NotSame(t, stored, doc)
		assert.Equal(t, "published", doc.State)
		assert.Equal(t, "draft", stored.State, "caller's copy is untouched")

		reloaded, err := store.FindByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "published", reloaded.State)
		assert.Equal(t, 1, *reloaded.StateValue)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{}
		store := statemachine.NewMemoryStore[*article]()
		m := publishing(store, rec)

		doc, err := m.FireByID(ctx, "publish", "missing")
		require.Error(t, err)
		assert.Nil(t, doc)
		assert.True(t, statemachine.IsNotFoundError(err))
		assert.False(t, statemachine.IsLookupFailedError(err))
		assert.Zero(t, store.Saves())
		assert.Empty(t, rec.list())
	})

	t.Run("nil document is treated as not found", func(t *testing.T) {
		t.Parallel()
		m := publishing(&nilFindStore{statemachine.NewMemoryStore[*article]()}, nil)

		_, err := m.FireByID(ctx, "publish", "x")
		assert.ErrorIs(t, err, statemachine.ErrNotFound)
	})

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()
		errConn := errors.New("connection reset")
		m := publishing(&lookupFailingStore{statemachine.NewMemoryStore[*article](), errConn}, nil)

		_, err := m.FireByID(ctx, "publish", "a1")
		require.Error(t, err)
		assert.True(t, statemachine.IsLookupFailedError(err))
		assert.False(t, statemachine.IsNotFoundError(err))
		assert.ErrorIs(t, err, errConn)

		var lookup *statemachine.ErrLookupFailed
		require.ErrorAs(t, err, &lookup)
		assert.Equal(t, "a1", lookup.ID)
	})

	t.Run("unknown transition skips lookup", func(t *testing.T) {
		t.Parallel()
		m := publishing(&lookupFailingStore{statemachine.NewMemoryStore[*article](), errDisk}, nil)

		_, err := m.FireByID(ctx, "explode", "a1")
		assert.ErrorIs(t, err, statemachine.ErrUnknownTransition)
		assert.False(t, statemachine.IsLookupFailedError(err))
	})

	t.Run("propagates engine errors", func(t *testing.T) {
		t.Parallel()
		store := statemachine.NewMemoryStore[*article]()
		m := publishing(store, nil)
		require.NoError(t, store.Save(ctx, &article{ID: "a1", Fields: statemachine.Fields{State: "archived"}}))

		_, err := m.FireByID(ctx, "publish", "a1")
		assert.True(t, statemachine.IsInvalidTransitionError(err))
	})
}

func TestBoundOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := statemachine.NewMemoryStore[*article]()
	m := publishing(store, nil)

	ops := m.Transitions()
	require.Len(t, ops, 2)
	require.Contains(t, ops, "publish")
	require.Contains(t, ops, "archive")

	doc := m.Init(&article{ID: "a1"})
	_, err := ops["publish"](ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "published", doc.State)

	byID := m.TransitionsByID()
	require.Len(t, byID, 2)
	got, err := byID["archive"](ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "archived", got.State)

	_, err = m.Transition("missing")(ctx, doc)
	assert.ErrorIs(t, err, statemachine.ErrUnknownTransition)
	_, err = m.TransitionByID("missing")(ctx, "a1")
	assert.ErrorIs(t, err, statemachine.ErrUnknownTransition)
}

func TestCanFireAndAvailable(t *testing.T) {
	t.Parallel()

	m := publishing(statemachine.NewMemoryStore[*article](), nil)

	fresh := &article{ID: "a"}
	assert.True(t, m.CanFire(fresh, "publish"), "unset state is treated as the default")
	assert.Empty(t, fresh.State, "CanFire must not mutate the document")
	assert.Equal(t, []string{"publish", "archive"}, m.Available(fresh))

	published := &article{ID: "b", Fields: statemachine.Fields{State: "published"}}
	assert.False(t, m.CanFire(published, "publish"))
	assert.Equal(t, []string{"archive"}, m.Available(published))

	archived := &article{ID: "c", Fields: statemachine.Fields{State: "archived"}}
	assert.Empty(t, m.Available(archived))
	assert.False(t, m.CanFire(archived, "unknown"))
}

func TestFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := statemachine.NewMemoryStore(&article{ID: "a1"})
	m := publishing(store, nil)

	doc, err := m.Find(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", doc.ID)

	_, err = m.Find(ctx, "zz")
	assert.True(t, statemachine.IsNotFoundError(err))
}
