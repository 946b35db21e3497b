package cache

import "sync/atomic"

// Stats is a point-in-time snapshot of a Cache's monotonic counters, per
// spec.md §4.7 ("All counters are monotonic u64; stats() returns a
// snapshot. Reset is explicit and rare.").
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Insertions    uint64
	Deletions     uint64
	Compressions  uint64
	L2Promotions  uint64
	L2Failures    uint64
	CurrentCount  uint64
	CurrentBytes  uint64
}

type counters struct {
	hits         atomic.Uint64
	misses       atomic.Uint64
	evictions    atomic.Uint64
	insertions   atomic.Uint64
	deletions    atomic.Uint64
	compressions atomic.Uint64
	l2Promotions atomic.Uint64
	l2Failures   atomic.Uint64
	currentCount atomic.Uint64
	currentBytes atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Evictions:    c.evictions.Load(),
		Insertions:   c.insertions.Load(),
		Deletions:    c.deletions.Load(),
		Compressions: c.compressions.Load(),
		L2Promotions: c.l2Promotions.Load(),
		L2Failures:   c.l2Failures.Load(),
		CurrentCount: c.currentCount.Load(),
		CurrentBytes: c.currentBytes.Load(),
	}
}

// reset zeroes every counter. Rare and explicit, per spec.md §4.7.
func (c *counters) reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.insertions.Store(0)
	c.deletions.Store(0)
	c.compressions.Store(0)
	c.l2Promotions.Store(0)
	c.l2Failures.Store(0)
	// currentCount/currentBytes are live gauges, not event counters; they are
	// left untouched by reset.
}
