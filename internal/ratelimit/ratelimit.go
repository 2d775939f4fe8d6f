// Package ratelimit limits requests per key (client IP). The in-memory
// limiter is a token bucket per key; the Redis limiter is a fixed one-second
// window shared by every API instance.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyedRateLimiter manages per-key rate limiting in process memory.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewMemory creates a keyed limiter allowing rps requests per second with the given burst.
func NewMemory(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (krl *KeyedRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return krl.getLimiter(key).Allow(), nil
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.RLock()
	limiter, exists := krl.limiters[key]
	krl.mu.RUnlock()

	if exists {
		return limiter
	}

	krl.mu.Lock()
	defer krl.mu.Unlock()

	if limiter, exists = krl.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters[key] = limiter
	return limiter
}

// Len is the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.RLock()
	defer krl.mu.RUnlock()
	return len(krl.limiters)
}
