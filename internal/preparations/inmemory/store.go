// Package inmemory provides the in-memory implementation of the
// preparation store.
package inmemory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dvloznov/zenmoney-bridge/internal/preparations"
)

// Store keeps staged batches in a mutex-guarded map. The lock is held only
// for an insert or a remove-and-return, never across a network call, so
// concurrent prepares and executes do not block on ledger I/O. Batches are
// lost on restart; that matches the single-use, preview-then-commit design.
type Store struct {
	mu      sync.Mutex
	batches map[string]*preparations.PreparedBatch
}

// NewStore creates an empty in-memory preparation store.
func NewStore() *Store {
	return &Store{
		batches: make(map[string]*preparations.PreparedBatch),
	}
}

// Stage implements the Store interface.
func (s *Store) Stage(ctx context.Context, batch *preparations.PreparedBatch) (string, error) {
	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[key] = batch

	return key, nil
}

// Consume implements the Store interface. It removes and returns the batch
// in one critical section, so a second call with the same key observes
// preparations.ErrNotFound.
func (s *Store) Consume(ctx context.Context, key string) (*preparations.PreparedBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[key]
	if !ok {
		return nil, preparations.ErrNotFound
	}
	delete(s.batches, key)

	return batch, nil
}

// Ensure Store implements the preparation store interface.
var _ preparations.Store = (*Store)(nil)
