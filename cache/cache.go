package cache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type entry struct {
	value  interface{}
	expiry time.Time
}

// TTL is a key → value cache where every entry carries a fixed time-to-live.
// Expiry is checked at read time; Sweep exists for housekeeping but reads never
// depend on it. Writes are never invalidated by domain mutations, so a stale
// window of up to one TTL is expected and accepted.
type TTL struct {
	mu          sync.Mutex
	entries     map[string]entry
	ttl         time.Duration
	clock       Clock
	keepExpired bool
}

// NewTTL creates a cache with the given entry lifetime. A nil clock defaults
// to the real one.
func NewTTL(ttl time.Duration, clock Clock) *TTL {
	if clock == nil {
		clock = RealClock{}
	}
	return &TTL{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// NewStaleTTL creates a cache whose expired entries survive Sweep, for views
// that answer GetStale with an old page when a fresh fetch fails. Entries are
// only ever replaced by Set or removed by Delete.
func NewStaleTTL(ttl time.Duration, clock Clock) *TTL {
	c := NewTTL(ttl, clock)
	c.keepExpired = true
	return c
}

// Get returns the cached value for key if it exists and has not expired.
func (c *TTL) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.clock.Now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the cached value for key even if it has expired. The second
// return reports presence, the third freshness. Used by the featured view to
// serve an old page when the backend is down.
func (c *TTL) GetStale(key string) (interface{}, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}
	return e.value, true, !c.clock.Now().After(e.expiry)
}

// Set stores value under key with the cache's TTL.
func (c *TTL) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiry: c.clock.Now().Add(c.ttl)}
}

// Delete removes key if present.
func (c *TTL) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the current entry count, expired entries included.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops expired entries and returns how many were removed. On a
// stale-serving cache it is a no-op; those entries back the fallback path.
func (c *TTL) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keepExpired {
		return 0
	}

	now := c.clock.Now()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiry) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
