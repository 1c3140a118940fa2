package workerpool_test

import (
	"sync"
	"testing"

	"go.uber.org/atomic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/internal/workerpool"
)

func TestSubmitRunsEveryTask(t *testing.T) {
	p := workerpool.New(4, 16)
	defer p.Close()

	var done atomic.Int64
	var wg sync.WaitGroup
	const n = 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		p.Submit(func() {
			done.Add(1)
			wg.Done()
		})
	}
	wg.Wait()

	assert.Equal(t, int64(n), done.Load())
}

func TestNewDefaultsWorkersAndCapacity(t *testing.T) {
	p := workerpool.New(0, 0)
	defer p.Close()
	assert.Greater(t, p.NumWorkers(), 0)
}

// TestTryPopWaitingDrainsQueuedWork checks the help-wait contract: a task
// blocked waiting on a child can pull queued work itself instead of idling.
func TestTryPopWaitingDrainsQueuedWork(t *testing.T) {
	p := workerpool.New(1, 8)
	defer p.Close()

	block := make(chan struct{})
	p.Submit(func() { <-block })

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })

	task, ok := p.TryPopWaiting()
	require.True(t, ok)
	p.RunTask(task)
	assert.True(t, ran.Load())

	close(block)
}

func TestTryPopWaitingReportsFalseWhenEmpty(t *testing.T) {
	p := workerpool.New(2, 4)
	defer p.Close()

	_, ok := p.TryPopWaiting()
	assert.False(t, ok)
}

func TestCloseWaitsForInFlightTasks(t *testing.T) {
	p := workerpool.New(2, 4)

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	p.Close()

	assert.True(t, ran.Load())
}
