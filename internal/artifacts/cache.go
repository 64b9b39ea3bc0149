package artifacts

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/singleflight"
)

// TimedCache is a single-entry, whole-dataset cache. Staleness is a read
// side judgment (now - timestamp > ttl), never an eviction: stale entries
// are kept and served when a refresh fails. The clock is injectable so
// tests can move time instead of sleeping.
type TimedCache[T any] struct {
	mu        sync.RWMutex
	data      T
	timestamp time.Time
	etag      string
	populated bool

	ttl   time.Duration
	clock clock.Clock
	group singleflight.Group
}

func NewTimedCache[T any](ttl time.Duration, clk clock.Clock) *TimedCache[T] {
	if clk == nil {
		clk = clock.New()
	}
	return &TimedCache[T]{ttl: ttl, clock: clk}
}

// Get returns the cached value, whether it is still fresh, and whether
// anything has ever been stored.
func (c *TimedCache[T]) Get() (data T, fresh bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.populated {
		return data, false, false
	}
	return c.data, c.clock.Now().Sub(c.timestamp) < c.ttl, true
}

// ETag returns the conditional-request tag stored with the last Set.
func (c *TimedCache[T]) ETag() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.etag
}

// Timestamp returns when the cached value was last replaced.
func (c *TimedCache[T]) Timestamp() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timestamp
}

// Set replaces the value wholesale and restarts the TTL.
func (c *TimedCache[T]) Set(data T, etag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.etag = etag
	c.timestamp = c.clock.Now()
	c.populated = true
}

// Restore seeds the cache from a persisted snapshot, keeping the
// snapshot's own timestamp so a stale snapshot is visible as stale.
func (c *TimedCache[T]) Restore(data T, etag string, timestamp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.populated {
		return
	}
	c.data = data
	c.etag = etag
	c.timestamp = timestamp
	c.populated = true
}

// Refresh runs fn under a single-flight guard: concurrent callers that
// miss the cache share one in-flight refresh instead of issuing duplicate
// upstream pulls.
func (c *TimedCache[T]) Refresh(fn func() error) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, fn()
	})
	return err
}
