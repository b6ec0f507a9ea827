package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func sampleFields() map[string]string {
	return map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane.doe@example.com",
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "uid-1", sampleFields(), 120*time.Second))

	got, err := cache.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, sampleFields(), got)
}

func TestCacheAbsentKey(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "uid-1", sampleFields(), 120*time.Second))

	mr.FastForward(119 * time.Second)
	got, err := cache.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	mr.FastForward(2 * time.Second)
	got, err = cache.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, got, "expired entry must read as absent")
}

func TestCachePutOverwritesAndResetsTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "uid-1", map[string]string{
		"first_name": "Jane",
		"email":      "old@example.com",
	}, 120*time.Second))

	mr.FastForward(100 * time.Second)

	// Second put carries fewer fields; the old mapping must not leak through.
	require.NoError(t, cache.Put(ctx, "uid-1", map[string]string{
		"first_name": "Janet",
	}, 120*time.Second))

	mr.FastForward(100 * time.Second)
	got, err := cache.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"first_name": "Janet"}, got,
		"put replaces the full mapping and restarts the TTL window")
}

func TestCacheGetConnectivityError(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "uid-1")
	assert.Error(t, err)
}
