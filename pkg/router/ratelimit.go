package router

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a token bucket guarding outbound interaction responses.
// It allows a burst up to the bucket capacity, then refills at a steady
// rate.
type rateLimiter struct {
	rate       float64
	capacity   int
	tokens     float64
	lastRefill time.Time

	mu sync.Mutex
}

func newRateLimiter(rate float64, capacity int) *rateLimiter {
	return &rateLimiter{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// wait blocks until a token is available or the context is cancelled.
func (r *rateLimiter) wait(ctx context.Context) error {
	for {
		if r.allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.waitDuration()):
		}
	}
}

// allow consumes a token when one is available.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *rateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.rate
	if r.tokens > float64(r.capacity) {
		r.tokens = float64(r.capacity)
	}
	r.lastRefill = now
}

// waitDuration estimates the time until the next token.
func (r *rateLimiter) waitDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - r.tokens) / r.rate * float64(time.Second))
}
