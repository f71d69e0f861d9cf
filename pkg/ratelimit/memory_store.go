package ratelimit

import (
	"context"
	"time"

	"github.com/dmitrymomot/guardkit/pkg/cache"
)

// MemoryStore keeps window counters in a process-local expiring cache.
// The cache's atomic Update serializes concurrent increments on the same key,
// so two callers can never both observe count < limit and both be admitted
// when only one slot remains. Window reset falls out of entry expiry.
type MemoryStore struct {
	windows *cache.TTLCache[int64]
}

// NewMemoryStore creates an in-memory counter store. Cache options (clock,
// sweep interval) are passed through, which is how tests drive window expiry
// deterministically.
func NewMemoryStore(opts ...cache.Option) *MemoryStore {
	return &MemoryStore{
		windows: cache.New[int64](opts...),
	}
}

// IncrementAndGet atomically increments the counter for the key, starting a
// fresh window with count=incr when none exists or the previous has expired.
func (s *MemoryStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Time, error) {
	count, resetAt := s.windows.Update(key, window, func(old int64, _ bool) int64 {
		return old + int64(incr)
	})
	return count, resetAt, nil
}

// Get returns the current counter without modifying state.
func (s *MemoryStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	count, resetAt, ok := s.windows.GetWithExpiry(key)
	if !ok {
		return 0, time.Time{}, nil
	}
	return count, resetAt, nil
}

// Reset removes the counter for the given key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.windows.Delete(key)
	return nil
}

// Close stops the underlying cache's background sweep.
func (s *MemoryStore) Close() error {
	s.windows.Close()
	return nil
}
