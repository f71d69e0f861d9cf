package ratelimit

import (
	"context"
	"time"
)

// FixedWindow implements fixed-window request counting: discrete,
// non-overlapping time buckets per key with O(1) time and space per check.
// The trade-off is boundary bursting (up to ~2x the limit across a window
// edge), accepted here over the cost of sliding-window bookkeeping.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed-window limiter admitting at most limit
// requests per window per key.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &FixedWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Allow checks if a single request is admitted for the given key.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	return fw.AllowN(ctx, key, 1)
}

// AllowN checks if n requests are admitted for the given key. The increment
// happens regardless of outcome, so a rejected attempt still counts toward
// the window.
func (fw *FixedWindow) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if n <= 0 {
		return nil, ErrInvalidCount
	}

	count, resetAt, err := fw.store.IncrementAndGet(ctx, key, n, fw.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(count)),
		ResetAt:   resetAt,
	}, nil
}

// Status returns the current window state without consuming a slot.
func (fw *FixedWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, resetAt, err := fw.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count < int64(fw.limit),
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(count)),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the window for the given key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Reset(ctx, key)
}
