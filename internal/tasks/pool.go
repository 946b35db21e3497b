package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// PoolConfig tunes worker count bounds and the auto-scaling heuristic
// spec.md §4.9 describes.
type PoolConfig struct {
	MinWorkers      int
	MaxWorkers      int
	HighWatermark   float64       // scale up when depth > workers*HighWatermark
	ScaleUpWindow   time.Duration // sustained overload duration before scaling up
	ScaleDownWindow time.Duration // sustained idle duration before scaling down
	StarvationBound time.Duration // LOW-task age before promotion
	ScalerInterval  time.Duration // sampling/promotion tick period
}

// defaultPoolConfig matches the conservative defaults a single-process
// embedded executor should start with.
func defaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinWorkers:      2,
		MaxWorkers:      32,
		HighWatermark:   4,
		ScaleUpWindow:   2 * time.Second,
		ScaleDownWindow: 10 * time.Second,
		StarvationBound: 30 * time.Second,
		ScalerInterval:  500 * time.Millisecond,
	}
}

// pool runs workers that pull from queue and execute each Task's Fn,
// recovering a worker panic as a FAILED result rather than letting it
// crash the worker, per spec.md §4.9's failure semantics. An autoScaler
// goroutine adjusts the live worker count within [MinWorkers, MaxWorkers]
// by sampling queue depth against HighWatermark.
type pool struct {
	cfg   PoolConfig
	queue *pqueue

	mu      sync.Mutex
	target  int // desired worker count; autoScaler moves this within [Min,Max]
	running atomic.Int64
	overBy  time.Time // when depth first exceeded the high watermark
	underBy time.Time // when the queue first went empty

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func newPool(cfg PoolConfig, queue *pqueue) *pool {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	p := &pool{cfg: cfg, queue: queue, group: group, ctx: gctx, cancel: cancel, target: cfg.MinWorkers}
	for i := 0; i < cfg.MinWorkers; i++ {
		p.spawnWorker()
	}
	group.Go(p.runAutoScaler)
	return p
}

// spawnWorker starts one worker goroutine. It exits on shutdown, or
// voluntarily when it finds itself idle and the pool's target has been
// scaled down below the number of currently running workers.
func (p *pool) spawnWorker() {
	p.running.Add(1)

	p.group.Go(func() error {
		defer p.running.Add(-1)
		for {
			select {
			case <-p.ctx.Done():
				return nil
			case <-p.queue.notify:
			case <-time.After(50 * time.Millisecond):
			}
			for {
				t, ok := p.queue.pop()
				if !ok {
					break
				}
				p.run(t)
			}

			p.mu.Lock()
			overTarget := p.running.Load() > int64(p.target)
			p.mu.Unlock()
			if overTarget {
				return nil
			}
		}
	})
}

func (p *pool) run(t *Task) {
	if !t.setRunning() {
		t.finish(StatusCancelled, nil, errTaskCancelled)
		return
	}

	result, err := p.safeExec(t)
	if t.Cancelled() {
		t.finish(StatusCancelled, nil, errTaskCancelled)
		return
	}
	if err != nil {
		t.finish(StatusFailed, nil, err)
		return
	}
	t.finish(StatusSucceeded, result, nil)
}

func (p *pool) safeExec(t *Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{recovered: r}
		}
	}()
	return t.fn(p.ctx)
}

// runAutoScaler samples queue depth on cfg.ScalerInterval, scaling the
// worker count up after ScaleUpWindow of sustained overload and down after
// ScaleDownWindow of sustained idleness; it also runs the starvation
// promotion pass on the same tick.
func (p *pool) runAutoScaler() error {
	ticker := time.NewTicker(p.cfg.ScalerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return nil
		case <-ticker.C:
			p.queue.promoteStarved(p.cfg.StarvationBound)
			p.maybeScale()
		}
	}
}

func (p *pool) maybeScale() {
	depth := p.queue.depth()
	now := time.Now()

	p.mu.Lock()
	target := p.target
	overloaded := float64(depth) > float64(target)*p.cfg.HighWatermark

	scaleUp := false
	if overloaded {
		if p.overBy.IsZero() {
			p.overBy = now
		}
		p.underBy = time.Time{}
		scaleUp = now.Sub(p.overBy) >= p.cfg.ScaleUpWindow && target < p.cfg.MaxWorkers
		if scaleUp {
			p.target++
			p.overBy = time.Time{}
		}
		p.mu.Unlock()
		if scaleUp {
			p.spawnWorker()
		}
		return
	}

	p.overBy = time.Time{}
	if depth == 0 {
		if p.underBy.IsZero() {
			p.underBy = now
		}
		if now.Sub(p.underBy) >= p.cfg.ScaleDownWindow && target > p.cfg.MinWorkers {
			p.target--
			p.underBy = time.Time{}
			// A worker notices target < running on its own next idle poll
			// and exits voluntarily; see the worker loop above.
		}
	} else {
		p.underBy = time.Time{}
	}
	p.mu.Unlock()
}

// Shutdown stops the autoscaler and all workers; in-flight tasks are not
// interrupted, but no new task is picked up once this returns.
func (p *pool) Shutdown() {
	p.cancel()
	_ = p.group.Wait()
}

type panicError struct{ recovered any }

func (e panicError) Error() string {
	return "tasks: worker panic recovered"
}

func (e panicError) Unwrap() error {
	if err, ok := e.recovered.(error); ok {
		return err
	}
	return nil
}
