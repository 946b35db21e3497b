package tasks

import (
	"container/heap"
	"sync"
	"time"
)

// taskHeap is a slice-backed min-heap ordered by arrival sequence, so a
// single priority level drains FIFO regardless of whether an entry arrived
// via fresh submission or promotion from a lower level.
type taskHeap []*Task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x interface{}) { *h = append(*h, x.(*Task)) }
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// pqueue holds the four priority levels spec.md §4.9 requires, dequeuing
// CRITICAL before HIGH before NORMAL before LOW, and promoting starved LOW
// tasks one level up.
type pqueue struct {
	mu     sync.Mutex
	levels [4]taskHeap // indexed by Priority
	notify chan struct{}
}

func newPQueue() *pqueue {
	q := &pqueue{notify: make(chan struct{}, 1)}
	for i := range q.levels {
		heap.Init(&q.levels[i])
	}
	return q
}

func (q *pqueue) push(t *Task) {
	q.mu.Lock()
	heap.Push(&q.levels[t.priority], t)
	q.mu.Unlock()
	q.wake()
}

func (q *pqueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop dequeues the highest-priority, earliest-arrived task, or (nil, false)
// if every level is empty.
func (q *pqueue) pop() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for level := len(q.levels) - 1; level >= 0; level-- {
		if q.levels[level].Len() > 0 {
			return heap.Pop(&q.levels[level]).(*Task), true
		}
	}
	return nil, false
}

// criticalEmpty reports whether the CRITICAL level's head is empty, the
// fast-path eligibility check spec.md §4.9 describes ("...if its queue head
// is empty").
func (q *pqueue) criticalEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.levels[PriorityCritical].Len() == 0
}

// depth returns the total number of queued tasks across all levels.
func (q *pqueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	total := 0
	for _, lvl := range q.levels {
		total += lvl.Len()
	}
	return total
}

// promoteStarved walks the LOW and NORMAL levels, moving any task older
// than bound up one priority level, per spec.md §4.9's aging rule ("a LOW
// task older than starvation_bound promotes one level").
func (q *pqueue) promoteStarved(bound time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	promoted := 0
	// NORMAL is walked before LOW so a task promoted out of LOW in this pass
	// is not promoted again.
	for _, level := range []Priority{PriorityNormal, PriorityLow} {
		h := &q.levels[level]
		var kept taskHeap
		for _, t := range *h {
			if now.Sub(t.enqueued) >= bound {
				t.priority = level + 1
				heap.Push(&q.levels[level+1], t)
				promoted++
				continue
			}
			kept = append(kept, t)
		}
		*h = kept
		heap.Init(h)
	}
	return promoted
}
