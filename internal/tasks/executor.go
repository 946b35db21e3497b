// Package tasks implements the C9 background task executor: four
// priority-ordered queues with starvation aging, an auto-scaling worker
// pool, and an optional inline fast path, per spec.md §4.9.
package tasks

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrUnknownTask is returned by Cancel/Status/Result for an ID the
	// Executor has never seen (or has since forgotten).
	ErrUnknownTask   = errors.New("tasks: unknown task id")
	errTaskCancelled = errors.New("tasks: cancelled")
)

// Executor is a process-wide background task runner matching spec.md
// §4.9's submit/cancel/status/result surface.
type Executor struct {
	queue *pqueue
	pool  *pool

	mu    sync.Mutex
	tasks map[string]*Task
}

// NewExecutor builds an Executor with cfg's worker-pool bounds and scaling
// heuristic. A PoolConfig whose MinWorkers and MaxWorkers are both zero is
// replaced wholesale with sane defaults, whatever its other fields hold.
func NewExecutor(cfg PoolConfig) *Executor {
	if cfg.MinWorkers == 0 && cfg.MaxWorkers == 0 {
		cfg = defaultPoolConfig()
	}
	queue := newPQueue()
	return &Executor{
		queue: queue,
		pool:  newPool(cfg, queue),
		tasks: make(map[string]*Task),
	}
}

// Submit enqueues d, returning its assigned task ID. A descriptor marked
// Fast+NoIO runs inline on the calling goroutine when the CRITICAL queue's
// head is empty at submit time, per spec.md §4.9's fast-path rule.
func (e *Executor) Submit(d Descriptor) string {
	t := newTask(d)

	e.mu.Lock()
	e.tasks[t.ID] = t
	e.mu.Unlock()

	if d.Fast && d.NoIO && e.queue.criticalEmpty() {
		e.pool.run(t)
		return t.ID
	}

	e.queue.push(t)
	return t.ID
}

// Cancel requests cancellation of task id. A QUEUED task is cancelled
// synchronously (it will never run); a RUNNING task's Cancelled() flag is
// set for the task body to observe cooperatively, per spec.md §4.9.
func (e *Executor) Cancel(id string) error {
	t, err := e.lookup(id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status {
	case StatusQueued:
		// Marked cancelled and reported CANCELLED immediately; the task
		// stays in its queue and is finished (and its done channel closed
		// exactly once) the moment a worker pops it — see pool.run's
		// setRunning check.
		t.cancelled = true
		t.status = StatusCancelled
	case StatusRunning:
		t.cancelled = true
	}
	return nil
}

// Status returns task id's current lifecycle state.
func (e *Executor) Status(id string) (Status, error) {
	t, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return t.Status(), nil
}

// Result blocks until task id finishes or ctx is done.
func (e *Executor) Result(ctx context.Context, id string) (any, error) {
	t, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Result(ctx)
}

func (e *Executor) lookup(id string) (*Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[id]
	if !ok {
		return nil, ErrUnknownTask
	}
	return t, nil
}

// QueueDepth returns the total number of queued (not yet running) tasks
// across all priority levels.
func (e *Executor) QueueDepth() int {
	return e.queue.depth()
}

// Shutdown stops the worker pool and autoscaler; already-running tasks are
// not interrupted.
func (e *Executor) Shutdown() {
	e.pool.Shutdown()
}
