package cache

import (
	"sync"
	"time"
)

// Timed is a cache that invalidates elements on a timer basis. It is safe for
// concurrent use.
type Timed[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	cache map[string]element[V]
}

// element holds a timestamped value to save.
type element[V any] struct {
	value    V
	creation time.Time
}

// NewTimed creates a new Timed cache where elements will be invalidated after
// a time in cache corresponding to TTL.
func NewTimed[V any](ttl time.Duration) *Timed[V] {
	return &Timed[V]{
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]element[V]),
	}
}

// NewTimedWithClock is NewTimed with the wall clock factored out so tests can
// control expiry.
func NewTimedWithClock[V any](ttl time.Duration, now func() time.Time) *Timed[V] {
	c := NewTimed[V](ttl)
	c.now = now
	return c
}

// Set assigns a value to a key.
func (c *Timed[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = element[V]{
		value:    val,
		creation: c.now(),
	}
}

// Get retrieves a value for a key. The value may not exist or have expired, in
// which case ok will be false.
func (c *Timed[V]) Get(key string) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// check if the element is in memory
	el, ok := c.cache[key]
	if !ok {
		var zero V
		return zero, false
	}

	// in memory elements might still be invalid
	if elapsed := c.now().Sub(el.creation); elapsed > c.ttl {
		delete(c.cache, key)
		var zero V
		return zero, false
	}

	return el.value, true
}
