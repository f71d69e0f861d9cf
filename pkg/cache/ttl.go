package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the background sweep removes expired
// entries when no interval is configured.
const DefaultSweepInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe in-process key-value store with per-entry
// expiration. Expired entries are removed lazily on read and periodically by
// a background sweep, so memory stays bounded regardless of access patterns.
//
// The cache is keyed by string to support wildcard invalidation. There should
// be exactly one authoritative instance per process for a given concern;
// multi-process deployments need an externally shared store instead.
type TTLCache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]

	now           func() time.Time
	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

type settings struct {
	clock         func() time.Time
	sweepInterval time.Duration
}

// Option configures a TTLCache.
type Option func(*settings)

// WithClock replaces the time source. Tests use this to simulate TTL expiry
// deterministically instead of sleeping.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSweepInterval sets the background sweep interval.
// Set to 0 to disable the sweep entirely.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *settings) {
		s.sweepInterval = interval
	}
}

// New creates a TTLCache and starts its background sweep unless disabled.
func New[V any](opts ...Option) *TTLCache[V] {
	s := settings{
		clock:         time.Now,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(&s)
	}

	c := &TTLCache[V]{
		entries:       make(map[string]entry[V]),
		now:           s.clock,
		sweepInterval: s.sweepInterval,
		stopSweep:     make(chan struct{}),
	}

	if c.sweepInterval > 0 {
		go c.sweepLoop()
	}

	return c
}

// Set stores a value with an absolute expiry of now+ttl, overwriting any
// existing entry under the same key.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Get returns the value if present and not yet expired. An expired entry is
// deleted on read (lazy expiration), so a hit never yields stale data.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	v, _, ok := c.GetWithExpiry(key)
	return v, ok
}

// GetWithExpiry is Get plus the entry's absolute expiry time.
func (c *TTLCache[V]) GetWithExpiry(key string) (V, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, time.Time{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, time.Time{}, false
	}
	return e.value, e.expiresAt, true
}

// Update applies fn to the entry under the cache lock, making the
// read-modify-write atomic with respect to concurrent callers. When the key
// is absent or expired, fn receives the zero value and exists=false, and the
// new entry gets an expiry of now+ttl; otherwise the existing expiry is kept.
// Returns the stored value and its expiry time.
func (c *TTLCache[V]) Update(key string, ttl time.Duration, fn func(old V, exists bool) V) (V, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if ok && !now.Before(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}

	if !ok {
		var zero V
		e = entry[V]{
			value:     fn(zero, false),
			expiresAt: now.Add(ttl),
		}
	} else {
		e.value = fn(e.value, true)
	}
	c.entries[key] = e

	return e.value, e.expiresAt
}

// Delete removes a single entry. Removing an absent key is a no-op.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeletePattern removes every entry whose key matches the '*'-wildcard
// pattern in a single pass over all keys. Returns the number of entries
// removed. O(n) over the key set, which is acceptable at this scale.
func (c *TTLCache[V]) DeletePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if matchPattern(pattern, key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been swept.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes all expired entries immediately. The background loop calls
// this on its interval; tests call it directly with a fake clock.
func (c *TTLCache[V]) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Close stops the background sweep goroutine. Safe to call multiple times.
func (c *TTLCache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopSweep)
	})
}

func (c *TTLCache[V]) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopSweep:
			return
		}
	}
}

// matchPattern matches key against a glob where '*' matches any run of
// characters. Literal segments between wildcards are matched greedily left to
// right as substrings, with the first and last segments anchored as prefix
// and suffix.
func matchPattern(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}

	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	rest := key[len(parts[0]):]

	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}

	last := parts[len(parts)-1]
	return len(rest) >= len(last) && strings.HasSuffix(rest, last)
}
