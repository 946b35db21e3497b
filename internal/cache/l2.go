package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// l2 is the optional on-disk cache tier, backed by diskv. Content is
// sharded into a two-level hex directory scheme keyed by the SHA-256 of the
// cache key, per spec.md §6 ("content-addressed directory scheme"). diskv's
// own Write already does write-to-temp-then-rename, so the atomicity
// contract in spec.md §6 is satisfied by diskv directly rather than
// reimplemented here.
type l2 struct {
	store *diskv.Diskv
	stats *counters
}

func newL2(root string, stats *counters) *l2 {
	store := diskv.New(diskv.Options{
		BasePath:     root,
		Transform:    l2ShardTransform,
		CacheSizeMax: 0, // diskv's own in-process cache is disabled; L1 already serves that role
	})
	return &l2{store: store, stats: stats}
}

// l2ShardTransform places a key's file under the first two hex bytes of its
// SHA-256 digest, giving a bounded-fanout two-level directory tree.
func l2ShardTransform(key string) []string {
	sum := sha256.Sum256([]byte(key))
	hexSum := hex.EncodeToString(sum[:])
	return []string{hexSum[0:2], hexSum[2:4]}
}

func (l *l2) diskKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// get reads and decodes an entry, decompressing it if it was stored
// compressed. A miss, a decode failure, or an expired entry all return
// found=false; expired entries are proactively erased.
func (l *l2) get(key string) (value []byte, found bool) {
	raw, err := l.store.Read(l.diskKey(key))
	if err != nil {
		return nil, false
	}

	h, storedKey, value, err := decodeL2Entry(raw)
	if err != nil || storedKey != key {
		l.stats.l2Failures.Add(1)
		return nil, false
	}
	if h.ExpiresAt != 0 && time.Now().UnixNano() >= h.ExpiresAt {
		_ = l.store.Erase(l.diskKey(key))
		return nil, false
	}

	if h.Compressed {
		decompressed, err := gunzip(value)
		if err != nil {
			l.stats.l2Failures.Add(1)
			return nil, false
		}
		return decompressed, true
	}
	return value, true
}

// set writes an entry to disk, compressing it first when it qualifies by
// CompressionThreshold. Returns false (degrading to L1-only, never an
// error) on any I/O failure, per spec.md §4.7's failure semantics.
func (l *l2) set(key string, value []byte, ttl time.Duration) bool {
	stored := value
	compressed := false
	if len(value) >= CompressionThreshold {
		if gz, err := gzipBytes(value); err == nil && len(gz) < len(value) {
			stored = gz
			compressed = true
		}
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	h := l2Header{
		Version:    l2FormatVersion,
		Compressed: compressed,
		CreatedAt:  time.Now().UnixNano(),
		ExpiresAt:  expiresAt,
	}
	buf := encodeL2Entry(h, key, stored)

	if err := l.store.Write(l.diskKey(key), buf); err != nil {
		l.stats.l2Failures.Add(1)
		return false
	}
	return true
}

func (l *l2) delete(key string) {
	_ = l.store.Erase(l.diskKey(key))
}
