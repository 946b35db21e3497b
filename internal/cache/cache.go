// Package cache implements the C7 multi-level cache: a fixed-capacity
// in-process L1 (hash table + LRU) optionally backed by an on-disk L2, per
// spec.md §4.7 and §6.
package cache

import "time"

// Config configures a Cache. L2Root == "" disables the disk tier.
type Config struct {
	L1Capacity int
	L2Root     string
	DefaultTTL time.Duration
}

// Cache is the L1(+L2) engine applications and internal/static both use.
// L2 I/O errors never surface as an error return, per spec.md §4.7's
// failure semantics; they are counted in Stats().L2Failures and logged by
// the caller if it chooses to.
type Cache struct {
	l1  *l1
	l2  *l2
	ttl time.Duration

	counters counters
}

// New builds a Cache from cfg. An L2Root of "" yields an L1-only cache.
func New(cfg Config) *Cache {
	c := &Cache{ttl: cfg.DefaultTTL}
	c.l1 = newL1(cfg.L1Capacity, &c.counters)
	if cfg.L2Root != "" {
		c.l2 = newL2(cfg.L2Root, &c.counters)
	}
	return c
}

// Get returns the value for key, promoting an L2 hit into L1 as it goes,
// per spec.md §4.7 ("On L1 miss with L2 enabled, the engine reads from L2
// and promotes into L1").
func (c *Cache) Get(key string) ([]byte, bool) {
	if v, ok := c.l1.get(key); ok {
		return v, true
	}
	if c.l2 == nil {
		return nil, false
	}
	v, ok := c.l2.get(key)
	if !ok {
		return nil, false
	}
	c.l1.set(key, v, c.ttl)
	c.counters.l2Promotions.Add(1)
	return v, true
}

// Set stores key/value with the cache's default TTL in both tiers (L2, if
// configured). Eviction from L1 never deletes from L2, per spec.md §4.7.
func (c *Cache) Set(key string, value []byte) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores key/value with an explicit TTL (0 = no expiry).
func (c *Cache) SetTTL(key string, value []byte, ttl time.Duration) {
	c.l1.set(key, value, ttl)
	if c.l2 != nil {
		c.l2.set(key, value, ttl)
	}
}

// Delete removes key from both tiers.
func (c *Cache) Delete(key string) bool {
	found := c.l1.delete(key)
	if c.l2 != nil {
		c.l2.delete(key)
	}
	return found
}

// Exists reports whether key is present (and unexpired) in L1; it does not
// consult L2, matching spec.md §4.7's L1-only exists() contract.
func (c *Cache) Exists(key string) bool {
	return c.l1.exists(key)
}

// Stats returns a snapshot of the cache's monotonic counters.
func (c *Cache) Stats() Stats {
	return c.counters.snapshot()
}

// ResetStats zeroes the event counters (not the live size/count gauges).
// Explicit and rare, per spec.md §4.7.
func (c *Cache) ResetStats() {
	c.counters.reset()
}

// HasL2 reports whether this Cache was built with a disk tier, for
// diagnostics (e.g. the startup banner) that want to report tier state
// without reaching into Cache internals.
func (c *Cache) HasL2() bool {
	return c.l2 != nil
}
