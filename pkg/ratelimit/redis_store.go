package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultKeyPrefix namespaces limiter keys inside a shared Redis database.
const defaultKeyPrefix = "ratelimit:"

// RedisStore keeps window counters in Redis so rate limits stay consistent
// across multiple application instances, which a process-local store cannot
// provide. INCRBY carries the atomicity; the key's TTL carries the window.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit:" key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IncrementAndGet atomically increments the counter, stamping the window TTL
// when the key is created.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Time, error) {
	k := s.prefix + key

	count, err := s.client.IncrBy(ctx, k, int64(incr)).Result()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	// First increment in a window creates the key; give it the window TTL.
	if count == int64(incr) {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
		}
		return count, time.Now().Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if ttl < 0 {
		// Counter survived without a TTL (e.g. expiry raced a crash); re-stamp
		// so the window cannot live forever.
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
		}
		ttl = window
	}

	return count, time.Now().Add(ttl), nil
}

// Get returns the current counter without modifying state.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	k := s.prefix + key

	count, err := s.client.Get(ctx, k).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if ttl < 0 {
		return count, time.Time{}, nil
	}

	return count, time.Now().Add(ttl), nil
}

// Reset removes the counter for the given key.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
