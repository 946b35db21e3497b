package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTask(priority Priority, age time.Duration) *Task {
	t := newTask(Descriptor{Priority: priority})
	t.enqueued = time.Now().Add(-age)
	return t
}

func TestPQueueDequeuesHighestPriorityFirst(t *testing.T) {
	q := newPQueue()
	q.push(mkTask(PriorityLow, 0))
	q.push(mkTask(PriorityCritical, 0))
	q.push(mkTask(PriorityHigh, 0))

	first, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, PriorityCritical, first.priority)

	second, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, PriorityHigh, second.priority)
}

func TestPQueueFIFOWithinPriority(t *testing.T) {
	q := newPQueue()
	first := mkTask(PriorityNormal, 0)
	second := mkTask(PriorityNormal, 0)
	q.push(first)
	q.push(second)

	got, _ := q.pop()
	assert.Same(t, first, got)
	got, _ = q.pop()
	assert.Same(t, second, got)
}

func TestPQueuePopEmptyReturnsFalse(t *testing.T) {
	q := newPQueue()
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestPromoteStarvedMovesAgedLowTask(t *testing.T) {
	q := newPQueue()
	old := mkTask(PriorityLow, time.Minute)
	fresh := mkTask(PriorityLow, 0)
	q.push(old)
	q.push(fresh)

	promoted := q.promoteStarved(time.Second)
	assert.Equal(t, 1, promoted)

	task, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, PriorityNormal, task.priority)
	assert.Same(t, old, task)
}

func TestCriticalEmptyReflectsQueueState(t *testing.T) {
	q := newPQueue()
	assert.True(t, q.criticalEmpty())
	q.push(mkTask(PriorityCritical, 0))
	assert.False(t, q.criticalEmpty())
}

func TestDepthCountsAllLevels(t *testing.T) {
	q := newPQueue()
	q.push(mkTask(PriorityLow, 0))
	q.push(mkTask(PriorityHigh, 0))
	assert.Equal(t, 2, q.depth())
}
