package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store for tests and offline runs.
type MockStore struct {
	mu       sync.RWMutex
	episodes map[uuid.UUID]*Episode
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		episodes: make(map[uuid.UUID]*Episode),
	}
}

func (m *MockStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) SaveEpisode(ctx context.Context, ep *Episode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes[ep.ID] = ep
	return nil
}

func (m *MockStore) LoadEpisode(ctx context.Context, id uuid.UUID) (*Episode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.episodes[id], nil
}

func (m *MockStore) DeleteEpisode(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.episodes, id)
	return nil
}
