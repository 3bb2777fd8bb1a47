package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
)

// mockStore is a minimal BoardStore used to check the contract helper itself.
type mockStore struct {
	mu   sync.Mutex
	data map[string]*domain.BoardRecord
}

func (m *mockStore) Save(_ context.Context, rec *domain.BoardRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[rec.ID] = rec.Clone()
	return nil
}

func (m *mockStore) Load(_ context.Context, id string) (*domain.BoardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[id]
	if !ok {
		return nil, domain.ErrBoardNotFound
	}
	return rec.Clone(), nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestBoardStore_Contract(t *testing.T) {
	ports.RunBoardStoreContract(t, &mockStore{data: make(map[string]*domain.BoardRecord)})
}
