package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockert/fram-backend/internal/storage"
)

// countingFetcher records calls and serves canned payloads or a fixed error.
type countingFetcher struct {
	calls   int
	payload json.RawMessage
	err     error
}

func (f *countingFetcher) FetchNutrition(ctx context.Context, query string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func testPayload(name string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"foods":[{"description":%q}]}`, name))
}

func newTestCache(fetcher Fetcher) (*Cache, *storage.MemoryStore) {
	st := storage.NewMemoryStore(1 << 20)
	c := NewCache(st, fetcher, 24*time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	return c, st
}

func TestCache_FreshHitSkipsFetch(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, _ := newTestCache(fetcher)
	ctx := context.Background()

	first := c.GetNutrition(ctx, "Rhubarb")
	second := c.GetNutrition(ctx, "Rhubarb")

	assert.JSONEq(t, string(testPayload("Rhubarb")), string(first))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestCache_KeyNormalization(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, _ := newTestCache(fetcher)
	ctx := context.Background()

	c.GetNutrition(ctx, "  Rhubarb ")
	c.GetNutrition(ctx, "RHUBARB")
	c.GetNutrition(ctx, "rhubarb")

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, []string{"rhubarb"}, c.Keys())
}

func TestCache_ExpiredEntryRefetches(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, _ := newTestCache(fetcher)
	ctx := context.Background()

	base := c.now()
	c.GetNutrition(ctx, "rhubarb")
	require.Equal(t, 1, fetcher.calls)

	// Just inside the window: still cached.
	c.now = func() time.Time { return base.Add(24*time.Hour - time.Second) }
	c.GetNutrition(ctx, "rhubarb")
	assert.Equal(t, 1, fetcher.calls)

	// Past the window: refetched.
	c.now = func() time.Time { return base.Add(24*time.Hour + time.Second) }
	c.GetNutrition(ctx, "rhubarb")
	assert.Equal(t, 2, fetcher.calls)
}

func TestCache_StaleFallbackWhenFetchFails(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, _ := newTestCache(fetcher)
	ctx := context.Background()

	base := c.now()
	fresh := c.GetNutrition(ctx, "rhubarb")
	require.NotNil(t, fresh)

	// The entry expires and the upstream goes down.
	c.now = func() time.Time { return base.Add(48 * time.Hour) }
	fetcher.err = errors.New("fdc unreachable")

	stale := c.GetNutrition(ctx, "rhubarb")
	assert.Equal(t, fresh, stale)
}

func TestCache_MissWithFailedFetchReturnsNil(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("fdc unreachable")}
	c, _ := newTestCache(fetcher)

	data := c.GetNutrition(context.Background(), "unknown food")
	assert.Nil(t, data)
}

func TestCache_RoundTripPersistence(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, st := newTestCache(fetcher)
	ctx := context.Background()

	c.GetNutrition(ctx, "rhubarb")

	// A new cache over the same storage sees the entry without fetching.
	reloaded := NewCache(st, fetcher, 24*time.Hour)
	reloaded.now = c.now
	reloaded.Load(ctx)

	data := reloaded.GetNutrition(ctx, "rhubarb")
	assert.JSONEq(t, string(testPayload("Rhubarb")), string(data))
	assert.Equal(t, 1, fetcher.calls)
}

func TestCache_LoadCorruptDataStartsEmpty(t *testing.T) {
	st := storage.NewMemoryStore(1 << 20)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "nutritionCache", []byte("{broken")))

	c := NewCache(st, &countingFetcher{}, 24*time.Hour)
	c.Load(ctx)

	assert.Equal(t, 0, c.Len())
}

func TestCache_LoadNullDataStartsEmpty(t *testing.T) {
	// "null" unmarshals into a nil map without error; the cache must still
	// start empty and writable.
	st := storage.NewMemoryStore(1 << 20)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "nutritionCache", []byte("null")))

	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c := NewCache(st, fetcher, 24*time.Hour)
	c.Load(ctx)
	require.Equal(t, 0, c.Len())

	data := c.GetNutrition(ctx, "rhubarb")
	assert.JSONEq(t, string(testPayload("Rhubarb")), string(data))
	assert.Equal(t, 1, c.Len())
}

func TestCache_PruneEvictsOldestHalf(t *testing.T) {
	c, _ := newTestCache(&countingFetcher{})

	base := c.now()
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("food-%d", i)
		c.entries[key] = Entry{
			Data:      testPayload(key),
			Timestamp: base.Add(time.Duration(i) * time.Minute).UnixMilli(),
		}
	}

	c.pruneLocked()

	// ceil(5/2) = 3 oldest evicted, the 2 newest survive.
	assert.Equal(t, 2, c.Len())
	assert.ElementsMatch(t, []string{"food-3", "food-4"}, c.Keys())
}

func TestCache_PruneKeepsNewestEntry(t *testing.T) {
	c, _ := newTestCache(&countingFetcher{})

	c.entries["rhubarb"] = Entry{
		Data:      testPayload("Rhubarb"),
		Timestamp: c.now().UnixMilli(),
	}

	c.pruneLocked()

	// A lone entry is also the newest one; it must survive.
	assert.Equal(t, []string{"rhubarb"}, c.Keys())
}

func TestCache_QuotaTriggersPruneAndRetry(t *testing.T) {
	// Quota sized so six chunky entries overflow but three fit.
	padding := strings.Repeat("x", 300)
	st := storage.NewMemoryStore(1400)
	fetcher := &countingFetcher{}
	c := NewCache(st, fetcher, 24*time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		key := fmt.Sprintf("food-%d", i)
		c.entries[key] = Entry{
			Data:      json.RawMessage(fmt.Sprintf(`{"pad":%q}`, padding)),
			Timestamp: base.Add(time.Duration(i) * time.Minute).UnixMilli(),
		}
	}

	c.persistLocked(ctx)

	// The oldest half is gone and the retry landed in storage.
	assert.Equal(t, 3, c.Len())
	assert.ElementsMatch(t, []string{"food-3", "food-4", "food-5"}, c.Keys())

	raw, err := st.Get(ctx, "nutritionCache")
	require.NoError(t, err)

	var persisted map[string]Entry
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Len(t, persisted, 3)
}

func TestCache_SecondQuotaFailureIsSwallowed(t *testing.T) {
	// Even a single entry exceeds this quota; the cache stays usable.
	st := storage.NewMemoryStore(10)
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c := NewCache(st, fetcher, 24*time.Hour)
	ctx := context.Background()

	data := c.GetNutrition(ctx, "rhubarb")
	assert.NotNil(t, data)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	fetcher := &countingFetcher{payload: testPayload("Rhubarb")}
	c, st := newTestCache(fetcher)
	ctx := context.Background()

	c.GetNutrition(ctx, "rhubarb")
	require.Equal(t, 1, c.Len())

	c.Clear(ctx)

	assert.Equal(t, 0, c.Len())
	_, err := st.Get(ctx, "nutritionCache")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
