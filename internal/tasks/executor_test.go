package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastTestConfig() PoolConfig {
	cfg := defaultPoolConfig()
	cfg.ScalerInterval = 10 * time.Millisecond
	return cfg
}

func TestSubmitRunsTaskAndReturnsResult(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	id := e.Submit(Descriptor{
		Priority: PriorityNormal,
		Fn: func(ctx context.Context) (any, error) {
			return 42, nil
		},
	})

	result, err := e.Result(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	status, err := e.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
}

func TestFastPathRunsInline(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	ran := false
	id := e.Submit(Descriptor{
		Priority: PriorityNormal,
		Fast:     true,
		NoIO:     true,
		Fn: func(ctx context.Context) (any, error) {
			ran = true
			return nil, nil
		},
	})

	assert.True(t, ran, "fast+NoIO task should run inline on Submit")

	status, err := e.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)
}

func TestWorkerPanicRecordsFailedWithoutKillingPool(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	id := e.Submit(Descriptor{
		Priority: PriorityNormal,
		Fn: func(ctx context.Context) (any, error) {
			panic("boom")
		},
	})

	_, err := e.Result(context.Background(), id)
	require.Error(t, err)

	status, err := e.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)

	// Pool must still be usable after a panic.
	id2 := e.Submit(Descriptor{
		Priority: PriorityNormal,
		Fn: func(ctx context.Context) (any, error) {
			return "ok", nil
		},
	})
	result, err := e.Result(context.Background(), id2)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCancelQueuedTaskNeverRuns(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	ran := make(chan struct{}, 1)
	id := e.Submit(Descriptor{
		Priority: PriorityCritical, // unrelated to cancellation; used so Fn is deterministic if it did run
		Fn: func(ctx context.Context) (any, error) {
			ran <- struct{}{}
			return nil, nil
		},
	})

	require.NoError(t, e.Cancel(id))
	status, err := e.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)

	select {
	case <-ran:
		t.Fatal("cancelled queued task must never execute its Fn")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRunningTaskObservesCooperativeCancellation(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	var task *Task
	started := make(chan struct{})
	finish := make(chan struct{})
	id := e.Submit(Descriptor{
		Priority: PriorityNormal,
		Fn: func(ctx context.Context) (any, error) {
			close(started)
			<-finish
			if task.Cancelled() {
				return nil, errTaskCancelled
			}
			return "ran", nil
		},
	})

	e.mu.Lock()
	task = e.tasks[id]
	e.mu.Unlock()

	<-started
	require.NoError(t, e.Cancel(id))
	close(finish)

	_, err := e.Result(context.Background(), id)
	assert.ErrorIs(t, err, errTaskCancelled)
}

func TestUnknownTaskIDReturnsError(t *testing.T) {
	e := NewExecutor(fastTestConfig())
	defer e.Shutdown()

	_, err := e.Status("does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestQueueDepthReflectsPendingWork(t *testing.T) {
	e := NewExecutor(PoolConfig{MinWorkers: 0, MaxWorkers: 0, ScalerInterval: time.Hour})
	defer e.Shutdown()

	block := make(chan struct{})
	for i := 0; i < 3; i++ {
		e.Submit(Descriptor{
			Priority: PriorityNormal,
			Fn: func(ctx context.Context) (any, error) {
				<-block
				return nil, nil
			},
		})
	}

	assert.Eventually(t, func() bool {
		return e.QueueDepth() >= 1
	}, time.Second, 10*time.Millisecond)

	close(block)
}
