package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/guardkit/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := cache.New[string](cache.WithClock(clock.Now), cache.WithSweepInterval(0))
	defer c.Close()

	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestGetLazyExpiration(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := cache.New[int](cache.WithClock(clock.Now), cache.WithSweepInterval(0))
	defer c.Close()

	c.Set("k", 1, 10*time.Second)

	clock.Advance(9 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry must be readable before TTL elapses")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must be gone once TTL has elapsed")

	// The expired entry was deleted on read, not just hidden.
	assert.Equal(t, 0, c.Len())
}

func TestSetOverwrites(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := cache.New[string](cache.WithClock(clock.Now), cache.WithSweepInterval(0))
	defer c.Close()

	c.Set("k", "old", time.Second)
	c.Set("k", "new", time.Minute)

	clock.Advance(30 * time.Second)
	got, ok := c.Get("k")
	require.True(t, ok, "overwrite must refresh the expiry")
	assert.Equal(t, "new", got)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	c := cache.New[string](cache.WithSweepInterval(0))
	defer c.Close()

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	c.Delete("k") // deleting an absent key is a no-op

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDeletePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		keys    []string
		removed []string
	}{
		{
			name:    "prefix",
			pattern: "twofa:pending:*",
			keys:    []string{"twofa:pending:a", "twofa:pending:b", "twofa:other:a", "session:a"},
			removed: []string{"twofa:pending:a", "twofa:pending:b"},
		},
		{
			name:    "suffix",
			pattern: "*:a",
			keys:    []string{"x:a", "y:a", "x:b"},
			removed: []string{"x:a", "y:a"},
		},
		{
			name:    "substring",
			pattern: "*pending*",
			keys:    []string{"twofa:pending:a", "pending", "other"},
			removed: []string{"twofa:pending:a", "pending"},
		},
		{
			name:    "exact match without wildcard",
			pattern: "x:a",
			keys:    []string{"x:a", "x:ab"},
			removed: []string{"x:a"},
		},
		{
			name:    "match all",
			pattern: "*",
			keys:    []string{"a", "b", "c"},
			removed: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cache.New[struct{}](cache.WithSweepInterval(0))
			defer c.Close()

			for _, k := range tt.keys {
				c.Set(k, struct{}{}, time.Minute)
			}

			n := c.DeletePattern(tt.pattern)
			assert.Equal(t, len(tt.removed), n)

			for _, k := range tt.removed {
				_, ok := c.Get(k)
				assert.False(t, ok, "key %s should be removed", k)
			}
			assert.Equal(t, len(tt.keys)-len(tt.removed), c.Len())
		})
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := cache.New[int](cache.WithClock(clock.Now), cache.WithSweepInterval(0))
	defer c.Close()

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	clock.Advance(time.Minute)
	c.Sweep()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestBackgroundSweep(t *testing.T) {
	t.Parallel()

	c := cache.New[int](cache.WithSweepInterval(10 * time.Millisecond))
	defer c.Close()

	c.Set("k", 1, time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond, "background sweep should remove the expired entry")
}

func TestUpdateAtomicity(t *testing.T) {
	t.Parallel()

	c := cache.New[int](cache.WithSweepInterval(0))
	defer c.Close()

	const (
		goroutines = 16
		increments = 200
	)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range increments {
				c.Update("counter", time.Minute, func(old int, _ bool) int {
					return old + 1
				})
			}
		}()
	}
	wg.Wait()

	got, ok := c.Get("counter")
	require.True(t, ok)
	assert.Equal(t, goroutines*increments, got)
}

func TestUpdateResetsExpiredEntry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := cache.New[int](cache.WithClock(clock.Now), cache.WithSweepInterval(0))
	defer c.Close()

	incr := func(old int, _ bool) int { return old + 1 }

	v, firstExpiry := c.Update("k", 10*time.Second, incr)
	assert.Equal(t, 1, v)

	v, expiry := c.Update("k", 10*time.Second, incr)
	assert.Equal(t, 2, v)
	assert.Equal(t, firstExpiry, expiry, "existing entry keeps its expiry")

	clock.Advance(11 * time.Second)
	v, expiry = c.Update("k", 10*time.Second, incr)
	assert.Equal(t, 1, v, "expired entry restarts from the zero value")
	assert.True(t, expiry.After(firstExpiry))
}

func TestConcurrentMixedOperations(t *testing.T) {
	t.Parallel()

	c := cache.New[int](cache.WithSweepInterval(time.Millisecond))
	defer c.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := range 100 {
				c.Set(key, j, time.Millisecond*time.Duration(j%5))
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
				if j%25 == 0 {
					c.DeletePattern("k*")
				}
			}
		}()
	}
	wg.Wait()
}
