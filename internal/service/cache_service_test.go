package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Delete(context.Context, ...string) error {
	return errors.New("redis down")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(&memoryCacheRepo{items: map[string][]byte{}}, metrics, 0, nil, true)
	ctx := context.Background()
	key := HistoryCacheKey("q-1", 3)
	assert.Equal(t, "qms:history:q-1:v3", key)

	var out []string
	hit, err := cache.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, key, []string{"a", "b"}, 0))
	hit, err = cache.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, out)

	require.NoError(t, cache.Invalidate(ctx, key))
	hit, _ = cache.Get(ctx, key, &out)
	assert.False(t, hit)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)
}

func TestCacheServiceDisabledAndFailing(t *testing.T) {
	ctx := context.Background()

	disabled := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, false)
	assert.False(t, disabled.Enabled())
	hit, err := disabled.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, disabled.Set(ctx, "k", "v", 0))

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.NoError(t, nilCache.Invalidate(ctx, "k"))

	failing := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	hit, err = failing.Get(ctx, "k", new(string))
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, failing.Set(ctx, "k", "v", 0))
	assert.Error(t, failing.Invalidate(ctx, "k"))
}
