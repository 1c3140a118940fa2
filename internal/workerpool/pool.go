// Package workerpool implements the fixed-goroutine task pool the SAH
// builder's parallel build (pkg/bvh) submits split/partition work to.
//
// Modeled directly on
// df07-go-progressive-raytracer/pkg/renderer/worker_pool.go's
// WorkerPool/Worker/taskQueue/resultQueue/Start/Stop shape, generalized
// from tile-render tasks to arbitrary build tasks and extended with
// TryPopWaiting so a caller blocked on a child task's completion can help
// drain the queue instead of idling.
package workerpool

import (
	"runtime"
	"sync"
	"time"
)

// Task is a unit of work submitted to the pool. Build tasks close over
// their own inputs/outputs; the pool only knows how to run them.
type Task func()

// Pool manages a fixed set of goroutines draining a shared, buffered task
// queue, exposing submit / try-pop-waiting / run-task operations so a
// parallel build can both hand off work and help drain it.
type Pool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	workers int
}

// New creates a Pool with the given number of workers (runtime.NumCPU() if
// numWorkers <= 0) and queue capacity.
func New(numWorkers, queueCapacity int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueCapacity <= 0 {
		queueCapacity = numWorkers * 4
	}

	p := &Pool{
		tasks:   make(chan Task, queueCapacity),
		workers: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run()
	}

	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task for a worker goroutine to run. It blocks if the
// queue is full.
func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// TryPopWaiting removes and returns a queued task without blocking, or
// reports ok=false if the queue is currently empty. A task that is
// help-waiting on a child calls this (and RunTask on what it returns)
// instead of sleeping immediately.
func (p *Pool) TryPopWaiting() (task Task, ok bool) {
	select {
	case t := <-p.tasks:
		return t, true
	default:
		return nil, false
	}
}

// RunTask executes a task synchronously on the calling goroutine. Used by a
// help-waiting caller to make progress on queued work while blocked on a
// child result.
func (p *Pool) RunTask(task Task) {
	task()
}

// BackoffInterval is the sleep duration a help-wait loop uses when no
// waiting task is available, keeping a spinning waiter's CPU cost bounded.
const BackoffInterval = 100 * time.Microsecond

// NumWorkers reports the number of worker goroutines in the pool.
func (p *Pool) NumWorkers() int {
	return p.workers
}

// Close stops accepting new tasks and waits for in-flight and queued tasks
// to drain.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
