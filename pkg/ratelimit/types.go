package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is admitted.
	Allowed bool

	// Limit is the maximum number of requests admitted per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window expires and the counter restarts.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is admitted.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter defines the interface for rate limiting implementations.
type Limiter interface {
	// Allow checks if a single request is admitted for the given key,
	// consuming one slot if so.
	Allow(ctx context.Context, key string) (*Result, error)

	// AllowN checks if n requests are admitted for the given key.
	AllowN(ctx context.Context, key string, n int) (*Result, error)

	// Status returns the current state for the key without consuming a slot.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the rate limit state for the given key.
	Reset(ctx context.Context, key string) error
}

// Store defines the interface for rate limit counter backends.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key and
	// returns the new value with the window's reset time. A new window is
	// started when none exists or the previous one has expired.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (count int64, resetAt time.Time, err error)

	// Get returns the current counter value and reset time without
	// modifying state. A missing or expired window yields count 0.
	Get(ctx context.Context, key string) (count int64, resetAt time.Time, err error)

	// Reset removes the counter for the given key.
	Reset(ctx context.Context, key string) error
}
