package store

import (
	"context"
	"encoding/json"
	"sync"

	"consensus-be/internal/domain"
)

// Persistence stores the whole poll collection as one document. The
// store always writes the full collection, backends never see partial
// updates.
type Persistence interface {
	Load(ctx context.Context) ([]domain.Poll, error)
	Save(ctx context.Context, polls []domain.Poll) error
}

// MemoryPersistence holds the serialized collection in process memory.
// Used by tests and as the fallback backend when neither Redis nor
// Postgres is configured.
type MemoryPersistence struct {
	mu  sync.Mutex
	doc []byte
}

// NewMemoryPersistence creates an empty in-memory backend
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) Load(ctx context.Context) ([]domain.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return []domain.Poll{}, nil
	}
	var polls []domain.Poll
	if err := json.Unmarshal(m.doc, &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

func (m *MemoryPersistence) Save(ctx context.Context, polls []domain.Poll) error {
	data, err := json.Marshal(polls)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.doc = data
	m.mu.Unlock()
	return nil
}
