// Package nutrition caches FoodData Central lookups in front of the USDA
// API: normalized keys, a 24 hour freshness window, stale entries kept as a
// degraded fallback, and oldest-half pruning when storage runs out of room.
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clockert/fram-backend/internal/storage"
	"github.com/clockert/fram-backend/pkg/logger"
)

const cacheStorageKey = "nutritionCache"

// Fetcher looks up nutrition data for a product name from the external
// source. Implementations must apply their own request timeout.
type Fetcher interface {
	FetchNutrition(ctx context.Context, query string) (json.RawMessage, error)
}

// Entry is one cached lookup. Timestamp is Unix milliseconds, matching the
// persisted cache layout.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Cache is a key-normalized, time-expiring, size-bounded cache in front of a
// Fetcher. Entries past the freshness window are not served as fresh answers
// but survive as fallback values until pruned or cleared.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	storage storage.Store
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a Cache over the given storage backend and fetcher.
// Call Load to hydrate previously persisted entries.
func NewCache(st storage.Store, fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		storage: st,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load hydrates the cache from storage. Missing or corrupt data starts the
// cache empty; corruption is logged, never propagated.
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.storage.Get(ctx, cacheStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Error("Failed to read nutrition cache from storage", err)
		return
	}

	var entries map[string]Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Error("Corrupt nutrition cache in storage, starting empty", err)
		return
	}
	if entries == nil {
		// "null" unmarshals cleanly into a nil map; treat it as absence.
		return
	}
	c.entries = entries
	logger.Info("Nutrition cache loaded", map[string]interface{}{
		"entries": len(entries),
	})
}

// GetNutrition returns nutrition data for a product name. A fresh cached
// entry short-circuits the network; otherwise the fetcher is consulted and a
// failure falls back to whatever cached value exists, stale included. With
// no cached value and a failed fetch, the result is nil.
func (c *Cache) GetNutrition(ctx context.Context, productName string) json.RawMessage {
	key := normalizeKey(productName)

	c.mu.Lock()
	entry, ok := c.entries[key]
	fresh := ok && c.freshLocked(entry)
	c.mu.Unlock()

	if fresh {
		logger.Debug("Using cached nutrition data", map[string]interface{}{
			"key": key,
		})
		return entry.Data
	}

	data, err := c.fetcher.FetchNutrition(ctx, productName)
	if err != nil {
		logger.Error("Nutrition fetch failed", err, map[string]interface{}{
			"key": key,
		})
		if ok {
			logger.Warn("Serving cached nutrition data as fallback", map[string]interface{}{
				"key": key,
			})
			return entry.Data
		}
		return nil
	}

	c.mu.Lock()
	c.entries[key] = Entry{Data: data, Timestamp: c.now().UnixMilli()}
	c.persistLocked(ctx)
	c.mu.Unlock()

	return data
}

// Clear drops every entry from memory and storage.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if err := c.storage.Delete(ctx, cacheStorageKey); err != nil {
		logger.Error("Failed to clear nutrition cache from storage", err)
	}
	logger.Info("Nutrition cache cleared")
}

// Len returns the number of cached entries, fresh and stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys, unordered.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache) freshLocked(entry Entry) bool {
	age := c.now().UnixMilli() - entry.Timestamp
	return age < c.ttl.Milliseconds()
}

// persistLocked writes the cache to storage. A quota failure prunes the
// oldest half of the entries and retries exactly once; a second failure is
// logged and swallowed, leaving the in-memory cache usable for the session.
func (c *Cache) persistLocked(ctx context.Context) {
	if err := c.writeLocked(ctx); err != nil {
		if !errors.Is(err, storage.ErrQuotaExceeded) {
			logger.Error("Failed to persist nutrition cache", err)
			return
		}
		c.pruneLocked()
		if err := c.writeLocked(ctx); err != nil {
			logger.Error("Failed to persist nutrition cache after pruning", err, map[string]interface{}{
				"entries": len(c.entries),
			})
		}
	}
}

func (c *Cache) writeLocked(ctx context.Context) error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return err
	}
	return c.storage.Set(ctx, cacheStorageKey, data)
}

// pruneLocked evicts the chronologically oldest half of all entries,
// rounding up. The newest entry is never evicted: pruning runs right after a
// fetch, and dropping the value just fetched would defeat the point.
func (c *Cache) pruneLocked() {
	type aged struct {
		key       string
		timestamp int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, timestamp: e.Timestamp})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].timestamp < all[j].timestamp })

	toRemove := int(math.Ceil(float64(len(all)) / 2))
	if toRemove > len(all)-1 {
		toRemove = len(all) - 1
	}
	if toRemove < 0 {
		toRemove = 0
	}
	for i := 0; i < toRemove; i++ {
		delete(c.entries, all[i].key)
	}
	logger.Info("Pruned nutrition cache", map[string]interface{}{
		"removed":   toRemove,
		"remaining": len(c.entries),
	})
}

// normalizeKey maps a product name to its cache key.
func normalizeKey(productName string) string {
	return strings.ToLower(strings.TrimSpace(productName))
}
