package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/boardgen/pkg/domain"
)

// Store implements ports.BoardStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.BoardRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.BoardRecord),
	}
}

// Save persists a deep copy of the record.
func (s *Store) Save(ctx context.Context, rec *domain.BoardRecord) error {
	copied := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = copied
	return nil
}

// Load retrieves a copy of the record, so callers can't mutate the stored board.
func (s *Store) Load(ctx context.Context, id string) (*domain.BoardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return nil, domain.ErrBoardNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored board ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
