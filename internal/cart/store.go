// Package cart owns the storefront cart state: one consolidated line per
// product, persisted to durable key/value storage after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/storage"
	"github.com/clockert/fram-backend/pkg/logger"
	"github.com/clockert/fram-backend/pkg/price"
)

// ErrInvalidProduct is returned by Add when the product lacks an id or name.
var ErrInvalidProduct = errors.New("cart: product requires an id and a name")

// Store is the sole owner of one session's cart state. The in-memory line
// list is authoritative; storage is a durable copy refreshed after every
// mutation. All methods are safe for concurrent use.
//
// Subscribers are notified synchronously after each successful mutation and
// re-read state through the getters; a mutation that turns out to be a no-op
// (removing an absent line, adding zero quantity) does not notify.
type Store struct {
	mu        sync.Mutex
	key       string
	storage   storage.Store
	lines     []model.CartLine
	listeners map[int]func()
	nextID    int
}

// NewStore creates an empty Store bound to a storage key. Call Load to
// hydrate it from a previous session.
func NewStore(st storage.Store, key string) *Store {
	return &Store{
		key:       key,
		storage:   st,
		listeners: make(map[int]func()),
	}
}

// Load hydrates the store from storage. Missing or corrupt data resets the
// cart to empty without raising to the caller. Restored entries are cleaned:
// lines without an id or name are dropped, duplicate ids written by older
// storefront revisions are merged, quantities below 1 are clamped and a
// missing cached unit price is re-parsed. A cleaned state is re-persisted.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.lines = nil
		return
	}
	if err != nil {
		logger.Error("Failed to read cart from storage", err, map[string]interface{}{
			"key": s.key,
		})
		s.lines = nil
		return
	}

	var restored []model.CartLine
	if err := json.Unmarshal(raw, &restored); err != nil {
		logger.Error("Corrupt cart data in storage, resetting", err, map[string]interface{}{
			"key": s.key,
		})
		s.lines = nil
		return
	}

	cleaned, dirty := cleanLines(restored)
	s.lines = cleaned
	if dirty {
		logger.Warn("Dropped or repaired invalid cart lines on load", map[string]interface{}{
			"key":      s.key,
			"restored": len(restored),
			"kept":     len(cleaned),
		})
		s.persistLocked(ctx)
	}
}

// cleanLines validates and consolidates restored cart lines. It reports
// whether anything had to change.
func cleanLines(restored []model.CartLine) ([]model.CartLine, bool) {
	cleaned := make([]model.CartLine, 0, len(restored))
	index := make(map[model.ProductID]int, len(restored))
	dirty := false

	for _, line := range restored {
		if line.ProductID == "" || line.Name == "" {
			dirty = true
			continue
		}
		if line.Quantity < 1 {
			line.Quantity = 1
			dirty = true
		}
		if line.UnitPrice == 0 {
			if parsed := price.Parse(line.DisplayPrice); parsed != 0 {
				line.UnitPrice = parsed
				dirty = true
			}
		}
		if at, ok := index[line.ProductID]; ok {
			cleaned[at].Quantity += line.Quantity
			dirty = true
			continue
		}
		index[line.ProductID] = len(cleaned)
		cleaned = append(cleaned, line)
	}
	return cleaned, dirty
}

// Add puts quantity units of a product in the cart. Adding a product that is
// already present increments its line instead of appending a duplicate.
// A quantity below 1 is a no-op.
func (s *Store) Add(ctx context.Context, product model.CartProduct, quantity int) error {
	if quantity <= 0 {
		logger.Debug("Ignoring cart add with non-positive quantity", map[string]interface{}{
			"product_id": product.ID,
			"quantity":   quantity,
		})
		return nil
	}
	if product.ID == "" || product.Name == "" {
		logger.Error("Rejecting cart add with incomplete product data", ErrInvalidProduct, map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
		})
		return ErrInvalidProduct
	}

	s.mu.Lock()
	if at, ok := s.find(product.ID); ok {
		s.lines[at].Quantity += quantity
	} else {
		s.lines = append(s.lines, model.CartLine{
			ProductID:    product.ID,
			Name:         product.Name,
			DisplayPrice: product.DisplayPrice,
			Image:        product.Image,
			Quantity:     quantity,
			UnitPrice:    price.Parse(product.DisplayPrice),
		})
	}
	s.persistLocked(ctx)
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	notify(fns)
	return nil
}

// Remove deletes a product's line entirely, regardless of quantity. Removing
// an absent product is a no-op and fires no notification.
func (s *Store) Remove(ctx context.Context, id model.ProductID) {
	s.mu.Lock()
	at, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:at], s.lines[at+1:]...)
	s.persistLocked(ctx)
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	notify(fns)
}

// SetQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line; an absent product is a no-op.
func (s *Store) SetQuantity(ctx context.Context, id model.ProductID, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, id)
		return
	}

	s.mu.Lock()
	at, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.lines[at].Quantity = quantity
	s.persistLocked(ctx)
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	notify(fns)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked(ctx)
	fns := s.listenerSnapshot()
	s.mu.Unlock()

	notify(fns)
}

// Items returns a snapshot of the cart lines in insertion order.
func (s *Store) Items() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.CartLine, len(s.lines))
	copy(items, s.lines)
	return items
}

// Subtotal returns the sum of unit price times quantity across all lines.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, line := range s.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// TotalQuantity returns the summed quantity across all lines.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Subscribe registers a callback invoked synchronously after every
// successful mutation. The returned function unsubscribes it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) find(id model.ProductID) (int, bool) {
	for i, line := range s.lines {
		if line.ProductID == id {
			return i, true
		}
	}
	return 0, false
}

// persistLocked writes the current lines to storage, retrying once on
// failure. The cart holds few small entries, so there is nothing to prune; a
// persistent failure is logged and the in-memory state stays authoritative
// for the session.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		logger.Error("Failed to encode cart for storage", err, map[string]interface{}{
			"key": s.key,
		})
		return
	}
	if s.lines == nil {
		data = []byte("[]")
	}

	if err := s.storage.Set(ctx, s.key, data); err != nil {
		logger.Warn("Failed to persist cart, retrying once", map[string]interface{}{
			"key":   s.key,
			"error": err.Error(),
		})
		if err := s.storage.Set(ctx, s.key, data); err != nil {
			logger.Error("Failed to persist cart, keeping in-memory state", err, map[string]interface{}{
				"key":   s.key,
				"lines": len(s.lines),
			})
		}
	}
}

func (s *Store) listenerSnapshot() []func() {
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// notify runs listener callbacks outside the store lock so they can re-read
// state through the getters.
func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
