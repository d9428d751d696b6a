package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

// Collection is the subset of *mongo.Collection used by Store.
type Collection interface {
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
}

// Store keeps state machine documents in one collection, keyed by
// DocumentID under _id. T is the document struct; its bson tags decide the
// stored shape, so embed statemachine.Fields with `bson:",inline"`.
type Store[T any, PT interface {
	*T
	statemachine.Document
}] struct {
	coll Collection
}

// NewStore returns a Store backed by coll.
func NewStore[T any, PT interface {
	*T
	statemachine.Document
}](coll Collection) *Store[T, PT] {
	return &Store[T, PT]{coll: coll}
}

// Save replaces the stored document, inserting it when missing.
func (s *Store[T, PT]) Save(ctx context.Context, doc PT) error {
	id := doc.DocumentID()
	if id == "" {
		return ErrEmptyDocumentID
	}

	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save document '%s': %w", id, err)
	}
	return nil
}

// FindByID loads the document with the given id. A missing document yields
// statemachine.ErrNotFound.
func (s *Store[T, PT]) FindByID(ctx context.Context, id string) (PT, error) {
	var (
		doc  T
		zero PT
	)
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return zero, statemachine.ErrNotFound
	case err != nil:
		return zero, fmt.Errorf("find document '%s': %w", id, err)
	}
	return PT(&doc), nil
}

// FindByState returns the documents currently in state, sorted by id.
func (s *Store[T, PT]) FindByState(ctx context.Context, state string) ([]PT, error) {
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: statemachine.FieldState, Value: state}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find documents in state '%s': %w", state, err)
	}

	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents in state '%s': %w", state, err)
	}

	out := make([]PT, len(docs))
	for i := range docs {
		out[i] = PT(&docs[i])
	}
	return out, nil
}
