package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// MemoryStore keeps copies of batches in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.Batch
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.Batch)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (model.Batch, error) {
	if err := validKey(key); err != nil {
		return model.Batch{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	if !ok {
		return model.Batch{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) Replace(_ context.Context, key string, b model.Batch) error {
	if err := validKey(key); err != nil {
		return err
	}
	c := b.Clone()
	s.mu.Lock()
	s.data[key] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error { return nil }
