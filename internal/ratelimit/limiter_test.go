package ratelimit

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/observability"
)

func TestNewFactory_MemoryDefault(t *testing.T) {
	f, err := NewFactory(config.RateLimitStoreConfig{}, observability.NopLogger())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "memory", f.storeType)
	assert.Nil(t, f.client)
}

func TestNewFactory_UnknownType(t *testing.T) {
	_, err := NewFactory(config.RateLimitStoreConfig{Type: "memcached"}, observability.NopLogger())
	assert.Error(t, err)
}

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	limiter := newMemoryLimiter(1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "placas:10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, limiter.Allow(ctx, "placas:10.0.0.1"))
}

func TestMemoryLimiter_KeysIndependent(t *testing.T) {
	limiter := newMemoryLimiter(1, 1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "placas:10.0.0.1"))
	require.False(t, limiter.Allow(ctx, "placas:10.0.0.1"))

	assert.True(t, limiter.Allow(ctx, "placas:10.0.0.2"))
}

func TestRedisLimiter_WindowLimit(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	limiter := newRedisLimiter(client, 2, 1, observability.NopLogger())
	ctx := context.Background()

	// rps+burst requests pass inside one window, the next one is denied.
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "webhooks:10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow(ctx, "webhooks:10.0.0.1"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	limiter := newRedisLimiter(client, 1, 0, observability.NopLogger())

	srv.Close()

	assert.True(t, limiter.Allow(context.Background(), "webhooks:10.0.0.1"))
}

func TestFactory_RedisLimiters(t *testing.T) {
	srv := miniredis.RunT(t)

	f, err := NewFactory(config.RateLimitStoreConfig{
		Type:         "redis",
		RedisAddress: srv.Addr(),
	}, observability.NopLogger())
	require.NoError(t, err)
	defer f.Close()

	limiter := f.NewLimiter(5, 0)
	require.IsType(t, &redisLimiter{}, limiter)

	assert.True(t, limiter.Allow(context.Background(), "admin:10.0.0.1"))
}

func TestFactory_BurstDefaultsToRPS(t *testing.T) {
	f, err := NewFactory(config.RateLimitStoreConfig{Type: "memory"}, observability.NopLogger())
	require.NoError(t, err)

	limiter := f.NewLimiter(2, 0)
	mem, ok := limiter.(*memoryLimiter)
	require.True(t, ok)
	assert.Equal(t, 2, mem.burst)
}
