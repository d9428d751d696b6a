package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

// DB is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	upsertDocumentQuery = `INSERT INTO documents (collection, id, state, state_value, data)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (collection, id) DO UPDATE
SET state = EXCLUDED.state, state_value = EXCLUDED.state_value, data = EXCLUDED.data, updated_at = now()`

	selectDocumentQuery = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	selectByStateQuery = `SELECT data FROM documents WHERE collection = $1 AND state = $2 ORDER BY id`
)

// Store keeps state machine documents as JSONB rows of the documents table.
// The state and stateValue fields are copied into their own columns so they
// can be indexed and filtered without touching the payload.
type Store[T any, PT interface {
	*T
	statemachine.Document
}] struct {
	db         DB
	collection string
}

// NewStore returns a Store for the named collection.
func NewStore[T any, PT interface {
	*T
	statemachine.Document
}](db DB, collection string) (*Store[T, PT], error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	return &Store[T, PT]{db: db, collection: collection}, nil
}

// Save upserts the document row.
func (s *Store[T, PT]) Save(ctx context.Context, doc PT) error {
	id := doc.DocumentID()
	if id == "" {
		return ErrEmptyDocumentID
	}

	var stateValue any
	if v, ok := doc.CurrentStateValue(); ok {
		stateValue = v
	}

	if _, err := s.db.Exec(ctx, upsertDocumentQuery, s.collection, id, doc.CurrentState(), stateValue, doc); err != nil {
		return fmt.Errorf("save document '%s': %w", id, err)
	}
	return nil
}

// FindByID loads one document. A missing row yields statemachine.ErrNotFound.
func (s *Store[T, PT]) FindByID(ctx context.Context, id string) (PT, error) {
	var (
		doc  T
		zero PT
	)
	if err := s.db.QueryRow(ctx, selectDocumentQuery, s.collection, id).Scan(&doc); err != nil {
		if IsNotFoundError(err) {
			return zero, statemachine.ErrNotFound
		}
		return zero, fmt.Errorf("find document '%s': %w", id, err)
	}
	return PT(&doc), nil
}

// FindByState returns the documents currently in state, ordered by id.
func (s *Store[T, PT]) FindByState(ctx context.Context, state string) ([]PT, error) {
	rows, err := s.db.Query(ctx, selectByStateQuery, s.collection, state)
	if err != nil {
		return nil, fmt.Errorf("find documents in state '%s': %w", state, err)
	}

	docs, err := pgx.CollectRows(rows, pgx.RowTo[T])
	if err != nil {
		return nil, fmt.Errorf("scan documents in state '%s': %w", state, err)
	}

	out := make([]PT, len(docs))
	for i := range docs {
		out[i] = PT(&docs[i])
	}
	return out, nil
}
