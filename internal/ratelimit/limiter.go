// Package ratelimit provides the backing stores for per-route rate limits.
// Two store types are supported: an in-memory token bucket (single instance)
// and a Redis fixed-window counter (shared across instances).
package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/midiaexterior/gateway/internal/config"
	"github.com/midiaexterior/gateway/internal/observability"
)

// Limiter decides whether a request identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Factory creates per-route limiters over a shared backing store.
type Factory struct {
	storeType string
	client    *redis.Client
	logger    observability.Logger
}

// NewFactory creates a limiter factory for the configured store type.
func NewFactory(cfg config.RateLimitStoreConfig, logger observability.Logger) (*Factory, error) {
	f := &Factory{
		storeType: cfg.Type,
		logger:    logger,
	}

	switch cfg.Type {
	case "", "memory":
		f.storeType = "memory"
	case "redis":
		f.client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown rate limit store type %q", cfg.Type)
	}

	return f, nil
}

// NewLimiter creates a limiter enforcing the given rate.
func (f *Factory) NewLimiter(requestsPerSecond, burst int) Limiter {
	if burst < 1 {
		burst = requestsPerSecond
	}

	if f.storeType == "redis" {
		return newRedisLimiter(f.client, requestsPerSecond, burst, f.logger)
	}
	return newMemoryLimiter(requestsPerSecond, burst)
}

// Close releases the underlying store connection, if any.
func (f *Factory) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
