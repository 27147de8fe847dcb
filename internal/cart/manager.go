package cart

import (
	"context"
	"sync"

	"github.com/clockert/fram-backend/internal/storage"
)

// Manager hands out one Store per storefront session, hydrating each from
// storage on first use. Stores stay cached for the life of the process;
// storage remains the durable copy.
type Manager struct {
	mu       sync.Mutex
	storage  storage.Store
	stores   map[string]*Store
	onChange func(sessionID string, s *Store)
}

// NewManager creates a Manager over the given storage backend.
func NewManager(st storage.Store) *Manager {
	return &Manager{
		storage: st,
		stores:  make(map[string]*Store),
	}
}

// SetChangeListener registers a callback subscribed to every session store.
// It must be set during startup, before traffic reaches the manager.
func (m *Manager) SetChangeListener(fn func(sessionID string, s *Store)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Store returns the session's cart store, creating and hydrating it on first
// use.
func (m *Manager) Store(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[sessionID]; ok {
		return s
	}

	s := NewStore(m.storage, "cart:"+sessionID)
	s.Load(ctx)
	if m.onChange != nil {
		fn := m.onChange
		s.Subscribe(func() { fn(sessionID, s) })
	}
	m.stores[sessionID] = s
	return s
}
