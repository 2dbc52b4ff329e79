package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"collection-reconciler/core/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_IsExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, (&Snapshot{Built: now}).IsExpired(now), "zero TTL never caches")
	assert.False(t, (&Snapshot{Built: now, TTL: time.Minute}).IsExpired(now.Add(30*time.Second)))
	assert.True(t, (&Snapshot{Built: now, TTL: time.Minute}).IsExpired(now.Add(2*time.Minute)))
}

func TestSnapshotCache_Get(t *testing.T) {
	cache := NewSnapshotCache(time.Minute)
	spec := CollectionSpec{Name: "users"}

	var loads atomic.Int32
	load := func(ctx context.Context) ([]document.Document, []document.Document, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return []document.Document{{"_id": "1"}}, nil, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := cache.Get(context.Background(), spec, load)
			assert.NoError(t, err)
			assert.Len(t, snap.Source, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestSnapshotCache_Expiry(t *testing.T) {
	cache := NewSnapshotCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }
	spec := CollectionSpec{Name: "users"}

	var loads int
	load := func(ctx context.Context) ([]document.Document, []document.Document, error) {
		loads++
		return nil, nil, nil
	}

	_, err := cache.Get(context.Background(), spec, load)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), spec, load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(context.Background(), spec, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestSnapshotCache_DisabledAndErrors(t *testing.T) {
	cache := NewSnapshotCache(0)
	spec := CollectionSpec{Name: "users"}

	var loads int
	_, err := cache.Get(context.Background(), spec, func(ctx context.Context) ([]document.Document, []document.Document, error) {
		loads++
		return nil, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(context.Background(), spec, func(ctx context.Context) ([]document.Document, []document.Document, error) {
		return nil, nil, errors.New("fetch failed")
	})
	assert.EqualError(t, err, "fetch failed")
	assert.Equal(t, 1, loads)
}

func TestCollectionSpec_CacheKey(t *testing.T) {
	a := CollectionSpec{Name: "users", ExcludeFields: []string{"b", "a"}}
	b := CollectionSpec{Name: "users", IdentityField: "_id", ExcludeFields: []string{"a", "b"}}
	c := CollectionSpec{Name: "users", ExcludeFields: []string{"a"}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.NotEqual(t, a.CacheKey(), CollectionSpec{Name: "users", IgnoreOrder: true}.CacheKey())
}
