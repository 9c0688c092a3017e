package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/midiaexterior/gateway/internal/observability"
)

// redisLimiter is a fixed-window counter limiter backed by Redis. The window
// is one second; the allowed count per window is rps+burst. When Redis is
// unreachable the limiter fails open so a cache outage cannot take down
// request handling.
type redisLimiter struct {
	client *redis.Client
	rps    int
	burst  int
	logger observability.Logger
}

// newRedisLimiter creates a Redis fixed-window limiter.
func newRedisLimiter(client *redis.Client, rps, burst int, logger observability.Logger) *redisLimiter {
	return &redisLimiter{
		client: client,
		rps:    rps,
		burst:  burst,
		logger: logger,
	}
}

// Allow increments the current window's counter and checks it against the
// limit. INCR and EXPIRE run in a single pipeline round trip.
func (r *redisLimiter) Allow(ctx context.Context, key string) bool {
	window := time.Now().Unix()
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("rate limit store unavailable, failing open",
			observability.String("key", key),
			observability.Error(err),
		)
		return true
	}

	return incr.Val() <= int64(r.rps+r.burst)
}
