package statemachine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store keyed by DocumentID. Useful for tests
// and local runs.
//
// Documents are kept as JSON snapshots: Save records the document as it is
// at the time of the call and every FindByID decodes a fresh copy, so
// concurrent transitions on one id never share a struct. Only fields that
// survive encoding/json are kept.
type MemoryStore[D Document] struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	saves    int
	failNext error
}

// NewMemoryStore returns a store seeded with docs. It panics if a seed
// document cannot be encoded.
func NewMemoryStore[D Document](docs ...D) *MemoryStore[D] {
	s := &MemoryStore[D]{docs: make(map[string][]byte, len(docs))}
	for _, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			panic(fmt.Errorf("memory store: seed document '%s': %w", d.DocumentID(), err))
		}
		s.docs[d.DocumentID()] = data
	}
	return s
}

func (s *MemoryStore[D]) Save(ctx context.Context, doc D) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document '%s': %w", doc.DocumentID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	s.docs[doc.DocumentID()] = data
	s.saves++
	return nil
}

// FindByID returns a private copy of the last saved snapshot.
func (s *MemoryStore[D]) FindByID(ctx context.Context, id string) (D, error) {
	var zero D
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return zero, ErrNotFound
	}

	var doc D
	if err := json.Unmarshal(data, &doc); err != nil {
		return zero, fmt.Errorf("decode document '%s': %w", id, err)
	}
	return doc, nil
}

// FailNextSave makes the next Save return err without storing anything.
func (s *MemoryStore[D]) FailNextSave(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// Saves returns the number of successful saves.
func (s *MemoryStore[D]) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Len returns the number of stored documents.
func (s *MemoryStore[D]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
