package pg_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dmitrymomot/docstate/pkg/pg"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

type article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	statemachine.Fields
}

func (a *article) DocumentID() string { return a.ID }

// rowFunc adapts a function to pgx.Row.
type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func jsonRow(v any) pgx.Row {
	return rowFunc(func(dest ...any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, dest[0])
	})
}

func newStore(t *testing.T) (*pg.Store[article, *article], *MockDB) {
	t.Helper()
	db := NewMockDB(gomock.NewController(t))
	store, err := pg.NewStore[article](db, "articles")
	require.NoError(t, err)
	return store, db
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	_, err := pg.NewStore[article](NewMockDB(gomock.NewController(t)), "")
	assert.ErrorIs(t, err, pg.ErrEmptyCollection)
}

func TestStore_Save(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("writes state columns", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)
		value := 1
		doc := &article{ID: "a1", Title: "Hello", Fields: statemachine.Fields{State: "published", StateValue: &value}}

		db.EXPECT().
			Exec(gomock.Any(), gomock.Any(), "articles", "a1", "published", 1, doc).
			Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

		require.NoError(t, store.Save(ctx, doc))
	})

	t.Run("null state value", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)
		doc := &article{ID: "a1", Fields: statemachine.Fields{State: "draft"}}

		db.EXPECT().
			Exec(gomock.Any(), gomock.Any(), "articles", "a1", "draft", nil, doc).
			Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

		require.NoError(t, store.Save(ctx, doc))
	})

	t.Run("wraps driver error", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)
		errConn := errors.New("conn closed")

		db.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgconn.CommandTag{}, errConn)

		err := store.Save(ctx, &article{ID: "a1", Fields: statemachine.Fields{State: "draft"}})
		assert.ErrorIs(t, err, errConn)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)
		assert.ErrorIs(t, store.Save(ctx, &article{}), pg.ErrEmptyDocumentID)
	})
}

func TestStore_FindByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)
		value := 2

		db.EXPECT().
			QueryRow(gomock.Any(), gomock.Any(), "articles", "a1").
			Return(jsonRow(article{ID: "a1", Title: "Hello", Fields: statemachine.Fields{State: "archived", StateValue: &value}}))

		doc, err := store.FindByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Hello", doc.Title)
		assert.Equal(t, "archived", doc.State)
		assert.Equal(t, 2, *doc.StateValue)
	})

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)

		db.EXPECT().
			QueryRow(gomock.Any(), gomock.Any(), "articles", "missing").
			Return(rowFunc(func(...any) error { return pgx.ErrNoRows }))

		doc, err := store.FindByID(ctx, "missing")
		assert.Nil(t, doc)
		assert.ErrorIs(t, err, statemachine.ErrNotFound)
	})

	t.Run("other errors", func(t *testing.T) {
		t.Parallel()
		store, db := newStore(t)
		pgErr := &pgconn.PgError{Code: "42P01"}

		db.EXPECT().
			QueryRow(gomock.Any(), gomock.Any(), "articles", "a1").
			Return(rowFunc(func(...any) error { return pgErr }))

		_, err := store.FindByID(ctx, "a1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, statemachine.ErrNotFound)
		assert.True(t, pg.IsUndefinedTableError(err))
	})
}

func TestStore_FindByStateQueryError(t *testing.T) {
	t.Parallel()

	store, db := newStore(t)
	errConn := errors.New("conn closed")
	db.EXPECT().Query(gomock.Any(), gomock.Any(), "articles", "draft").Return(nil, errConn)

	_, err := store.FindByState(context.Background(), "draft")
	assert.ErrorIs(t, err, errConn)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.True(t, pg.IsCheckViolationError(&pgconn.PgError{Code: "23514"}))
	assert.False(t, pg.IsCheckViolationError(errors.New("x")))
	assert.False(t, pg.IsUndefinedTableError(nil))
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, pg.Healthcheck(pingerFunc(func(context.Context) error { return nil }))(context.Background()))

	errDown := errors.New("down")
	err := pg.Healthcheck(pingerFunc(func(context.Context) error { return errDown }))(context.Background())
	assert.ErrorIs(t, err, pg.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, errDown)
}
