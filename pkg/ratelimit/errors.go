package ratelimit

import "errors"

var (
	// ErrStoreRequired indicates a limiter was constructed without a store.
	ErrStoreRequired = errors.New("store is required")

	// ErrInvalidLimit indicates a non-positive request limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidWindow indicates a non-positive window duration.
	ErrInvalidWindow = errors.New("window must be positive")

	// ErrKeyRequired indicates an empty rate limit key.
	ErrKeyRequired = errors.New("key is required")

	// ErrInvalidCount indicates a non-positive slot count for AllowN.
	ErrInvalidCount = errors.New("count must be positive")

	// ErrStoreUnavailable indicates the counter backend cannot be reached.
	// Callers should fail closed on this error.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
