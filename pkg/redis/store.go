package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

const (
	defaultKeyPrefix     = "docstate"
	defaultScanBatchSize = 1000
)

// Store keeps state machine documents as JSON strings under prefix:id.
type Store[T any, PT interface {
	*T
	statemachine.Document
}] struct {
	db            redis.UniversalClient
	prefix        string
	ttl           time.Duration
	scanBatchSize int64
}

// NewStore returns a Store using prefix for its keys and no expiration.
func NewStore[T any, PT interface {
	*T
	statemachine.Document
}](client redis.UniversalClient, prefix string) *Store[T, PT] {
	return NewStoreWithConfig[T, PT](client, Config{KeyPrefix: prefix})
}

// NewStoreWithConfig returns a Store using the key prefix, TTL and scan batch
// size from cfg.
func NewStoreWithConfig[T any, PT interface {
	*T
	statemachine.Document
}](client redis.UniversalClient, cfg Config) *Store[T, PT] {
	s := &Store[T, PT]{
		db:            client,
		prefix:        cfg.KeyPrefix,
		ttl:           cfg.TTL,
		scanBatchSize: int64(cfg.ScanBatchSize),
	}
	if s.prefix == "" {
		s.prefix = defaultKeyPrefix
	}
	if s.scanBatchSize <= 0 {
		s.scanBatchSize = defaultScanBatchSize
	}
	return s
}

// Key returns the redis key of the document with the given id.
func (s *Store[T, PT]) Key(id string) string {
	return s.prefix + ":" + id
}

// Save writes the JSON encoding of doc, replacing any previous value.
func (s *Store[T, PT]) Save(ctx context.Context, doc PT) error {
	id := doc.DocumentID()
	if id == "" {
		return ErrEmptyDocumentID
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document '%s': %w", id, err)
	}

	if err := s.db.Set(ctx, s.Key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save document '%s': %w", id, err)
	}
	return nil
}

// FindByID loads one document. A missing key yields statemachine.ErrNotFound.
func (s *Store[T, PT]) FindByID(ctx context.Context, id string) (PT, error) {
	var zero PT

	data, err := s.db.Get(ctx, s.Key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return zero, statemachine.ErrNotFound
	case err != nil:
		return zero, fmt.Errorf("find document '%s': %w", id, err)
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return zero, fmt.Errorf("decode document '%s': %w", id, err)
	}
	return PT(&doc), nil
}

// Delete removes the document. Missing documents are ignored.
func (s *Store[T, PT]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyDocumentID
	}
	return s.db.Del(ctx, s.Key(id)).Err()
}

// IDs returns the identifiers of all stored documents using SCAN to avoid
// blocking the server.
func (s *Store[T, PT]) IDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
		match  = s.prefix + ":*"
	)

	for {
		batch, next, err := s.db.Scan(ctx, cursor, match, s.scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("scan document keys: %w", err)
		}
		for _, key := range batch {
			ids = append(ids, strings.TrimPrefix(key, s.prefix+":"))
		}
		if cursor = next; cursor == 0 {
			break
		}
	}

	return ids, nil
}
