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

func newTestCache(t *testing.T) (*RedisPredictionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPredictionCache(client, time.Minute, newTestLogger()), mr
}

func TestRedisPredictionCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	cache.Set(ctx, "k", 42.17)
	value, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 42.17, value)

	stored, err := mr.Get("sales:prediction:k")
	require.NoError(t, err)
	assert.Equal(t, "42.17", stored)
}

func TestRedisPredictionCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "k", 1.5)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisPredictionCacheMalformedValue(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("sales:prediction:k", "not-a-number"))

	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisPredictionCacheBackendDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	// Redisが停止していてもパニックせずミス扱いになる
	cache.Set(context.Background(), "k", 1)
	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	// 停止後は同じアドレスへのPINGが失敗する
	mr.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
