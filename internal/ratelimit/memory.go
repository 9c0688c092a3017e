package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// memoryLimiter is a token-bucket limiter keeping one bucket per key.
type memoryLimiter struct {
	rps   int
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// newMemoryLimiter creates an in-memory token bucket limiter.
func newMemoryLimiter(rps, burst int) *memoryLimiter {
	return &memoryLimiter{
		rps:     rps,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the request for key fits in its bucket.
func (m *memoryLimiter) Allow(_ context.Context, key string) bool {
	m.mu.Lock()
	bucket, ok := m.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rate.Limit(m.rps), m.burst)
		m.buckets[key] = bucket
	}
	m.mu.Unlock()

	// Allow is safe to call without the map lock.
	return bucket.Allow()
}
