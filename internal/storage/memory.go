package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and the STORAGE_BACKEND=memory
// development mode. MaxBytes, when positive, bounds the total stored value
// size so quota handling can be exercised without a real backend.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	maxBytes int
}

// NewMemoryStore creates a MemoryStore. maxBytes <= 0 means unbounded.
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{
		values:   make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 {
		total := len(value)
		for k, v := range s.values {
			if k == key {
				continue
			}
			total += len(v)
		}
		if total > s.maxBytes {
			return ErrQuotaExceeded
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
