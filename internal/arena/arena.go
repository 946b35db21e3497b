// Package arena implements the C2 arena manager: named bump-pointer regions
// with O(1) reset, layered over the allocator facade (C1).
package arena

import (
	"fmt"
	"sync"

	"github.com/catzilla-project/catzilla/internal/allocator"
)

// Names of the five arenas the runtime owns, per spec.md §4.2.
const (
	Request  = "request"
	Response = "response"
	Cache    = "cache"
	Static   = "static"
	Task     = "task"
)

// Arena is a single bump-allocated region. It is owned by exactly one
// goroutine at a time (the reactor for Request/Response, a task worker for
// Task); Reset must only be called when no live references into the arena
// remain, per the invariant in spec.md §3.
type Arena struct {
	tag   string
	alloc *allocator.Facade

	mu  sync.Mutex
	buf []byte
	off int
}

// New creates an arena tagged with name, backed by alloc, with an initial
// capacity of initialSize bytes.
func New(alloc *allocator.Facade, name string, initialSize int) *Arena {
	if initialSize <= 0 {
		initialSize = 4096
	}
	return &Arena{
		tag:   name,
		alloc: alloc,
		buf:   alloc.Alloc(name, initialSize, 8),
		off:   0,
	}
}

// Alloc returns an n-byte slice carved from the arena's bump pointer,
// doubling the backing region first if there isn't enough room. The
// returned slice is valid until the next Reset.
func (a *Arena) Alloc(n int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.off+n > len(a.buf) {
		a.grow(n)
	}
	b := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	return b
}

// grow doubles the arena's backing storage (or grows enough to fit n,
// whichever is larger), copying live bytes [0:off) into the new region.
// The old region is not returned to the allocator's pool, so slices
// handed out before the grow stay valid. Callers must hold a.mu.
func (a *Arena) grow(n int) {
	need := a.off + n
	newSize := len(a.buf) * 2
	if newSize == 0 {
		newSize = 4096
	}
	for newSize < need {
		newSize *= 2
	}
	newBuf := a.alloc.Alloc(a.tag, newSize, 8)
	copy(newBuf, a.buf[:a.off])
	a.buf = newBuf
}

// Reset returns the bump pointer to zero without releasing the backing
// pages, per spec.md §4.2. Any pointer previously returned by Alloc must be
// considered invalid after this call.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.off = 0
	a.mu.Unlock()
}

// Len reports the number of bytes currently carved out of the arena.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.off
}

// Cap reports the arena's current backing capacity.
func (a *Arena) Cap() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf)
}

// Tag returns the arena's name, e.g. "request".
func (a *Arena) Tag() string { return a.tag }

func (a *Arena) String() string {
	return fmt.Sprintf("arena(%s len=%d cap=%d)", a.tag, a.Len(), a.Cap())
}
