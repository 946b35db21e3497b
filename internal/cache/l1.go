package cache

import (
	"bytes"
	"hash/fnv"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// CompressionThreshold is the value size, in bytes, at or above which L1
// transparently gzip-compresses an entry before storing it, per spec.md
// §4.7 ("optional transparent compression when len(value) >= threshold").
const CompressionThreshold = 4096

const defaultBucketCount = 256

type entry struct {
	key        string
	value      []byte
	compressed bool
	expiresAt  int64 // unix nano; 0 = no expiry

	bucketNext *entry // next entry in this bucket's chain

	lruPrev, lruNext *entry
}

func (e *entry) expired(now int64) bool {
	return e.expiresAt != 0 && now >= e.expiresAt
}

type bucket struct {
	mu   sync.RWMutex
	head *entry
}

// l1 is a fixed-capacity, bucket-chained in-memory cache with an intrusive
// doubly-linked LRU list for O(1) touch/evict, matching spec.md §4.7's L1
// description verbatim. Bucket reads take the bucket's RLock only; the LRU
// list (which every Get must touch, since a read is also a "use") is
// guarded by its own single mutex, so the "single writer / many reader"
// story applies per-bucket while list maintenance stays correct under
// concurrent touches.
type l1 struct {
	buckets  []bucket
	mask     uint64
	capacity int

	lruMu      sync.Mutex
	lruHead    *entry // most recently used
	lruTail    *entry // least recently used
	entryCount int

	stats *counters
}

func newL1(capacity int, stats *counters) *l1 {
	n := defaultBucketCount
	for n < capacity/4 && n < 1<<20 {
		n <<= 1
	}
	return &l1{
		buckets:  make([]bucket, n),
		mask:     uint64(n - 1),
		capacity: capacity,
		stats:    stats,
	}
}

func (l *l1) bucketFor(key string) *bucket {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return &l.buckets[h.Sum64()&l.mask]
}

// get returns the (possibly decompressed) value for key, or false if absent
// or TTL-expired. A hit touches the entry to the front of the LRU list.
func (l *l1) get(key string) ([]byte, bool) {
	b := l.bucketFor(key)
	now := time.Now().UnixNano()

	b.mu.RLock()
	e := l.findLocked(b, key)
	b.mu.RUnlock()

	if e == nil {
		l.stats.misses.Add(1)
		return nil, false
	}
	if e.expired(now) {
		l.delete(key)
		l.stats.misses.Add(1)
		return nil, false
	}

	l.touch(e)
	l.stats.hits.Add(1)

	if !e.compressed {
		return e.value, true
	}
	decompressed, err := gunzip(e.value)
	if err != nil {
		// A corrupted compressed entry is treated as a miss rather than
		// propagated, since L1 never returns an error to its caller.
		l.delete(key)
		return nil, false
	}
	return decompressed, true
}

func (l *l1) findLocked(b *bucket, key string) *entry {
	for e := b.head; e != nil; e = e.bucketNext {
		if e.key == key {
			return e
		}
	}
	return nil
}

// set inserts or replaces key's value, applying ttl (0 = no expiry) and
// transparent compression when the value is large enough. Eviction runs
// until the cache is back within capacity.
func (l *l1) set(key string, value []byte, ttl time.Duration) {
	stored := value
	compressed := false
	if len(value) >= CompressionThreshold {
		if gz, err := gzipBytes(value); err == nil && len(gz) < len(value) {
			stored = gz
			compressed = true
			l.stats.compressions.Add(1)
		}
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	b := l.bucketFor(key)
	b.mu.Lock()
	existing := l.findLocked(b, key)
	if existing != nil {
		existing.value = stored
		existing.compressed = compressed
		existing.expiresAt = expiresAt
		b.mu.Unlock()
		l.touch(existing)
		return
	}

	e := &entry{key: key, value: stored, compressed: compressed, expiresAt: expiresAt}
	e.bucketNext = b.head
	b.head = e
	b.mu.Unlock()

	l.pushFront(e)
	l.stats.insertions.Add(1)
	l.stats.currentCount.Add(1)
	l.stats.currentBytes.Add(uint64(len(stored)))

	l.evictIfOverCapacity()
}

func (l *l1) delete(key string) bool {
	b := l.bucketFor(key)
	b.mu.Lock()
	var prev *entry
	e := b.head
	for e != nil && e.key != key {
		prev = e
		e = e.bucketNext
	}
	if e == nil {
		b.mu.Unlock()
		return false
	}
	if prev == nil {
		b.head = e.bucketNext
	} else {
		prev.bucketNext = e.bucketNext
	}
	b.mu.Unlock()

	l.unlink(e)
	l.stats.deletions.Add(1)
	l.stats.currentCount.Add(^uint64(0)) // -1
	l.stats.currentBytes.Add(^uint64(len(e.value) - 1))
	return true
}

func (l *l1) exists(key string) bool {
	b := l.bucketFor(key)
	now := time.Now().UnixNano()
	b.mu.RLock()
	e := l.findLocked(b, key)
	b.mu.RUnlock()
	return e != nil && !e.expired(now)
}

// touch moves e to the front of the LRU list.
func (l *l1) touch(e *entry) {
	l.lruMu.Lock()
	defer l.lruMu.Unlock()
	if l.lruHead == e {
		return
	}
	l.unlinkLocked(e)
	l.pushFrontLocked(e)
}

func (l *l1) pushFront(e *entry) {
	l.lruMu.Lock()
	defer l.lruMu.Unlock()
	l.pushFrontLocked(e)
	l.entryCount++
}

func (l *l1) pushFrontLocked(e *entry) {
	e.lruPrev = nil
	e.lruNext = l.lruHead
	if l.lruHead != nil {
		l.lruHead.lruPrev = e
	}
	l.lruHead = e
	if l.lruTail == nil {
		l.lruTail = e
	}
}

func (l *l1) unlink(e *entry) {
	l.lruMu.Lock()
	defer l.lruMu.Unlock()
	l.unlinkLocked(e)
	l.entryCount--
}

func (l *l1) unlinkLocked(e *entry) {
	if e.lruPrev != nil {
		e.lruPrev.lruNext = e.lruNext
	} else if l.lruHead == e {
		l.lruHead = e.lruNext
	}
	if e.lruNext != nil {
		e.lruNext.lruPrev = e.lruPrev
	} else if l.lruTail == e {
		l.lruTail = e.lruPrev
	}
	e.lruPrev, e.lruNext = nil, nil
}

// evictIfOverCapacity evicts LRU-tail entries until entryCount is within
// capacity, per spec.md §4.7's set() contract.
func (l *l1) evictIfOverCapacity() {
	for {
		l.lruMu.Lock()
		if l.entryCount <= l.capacity || l.lruTail == nil {
			l.lruMu.Unlock()
			return
		}
		victim := l.lruTail
		l.lruMu.Unlock()
		l.delete(victim.key)
		l.stats.evictions.Add(1)
	}
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
