// Package parallel evaluates independent chaining queries concurrently.
// A WorkerPool bounds how many searches run at once; a Runner fans a
// batch of queries out over the pool and gathers the proofs in query
// order.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// WorkerPool manages a fixed set of goroutines running submitted tasks.
// Submission blocks once the queue is full, which keeps a large batch
// from starting more searches than there are workers.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If maxWorkers is 0 or negative, it defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.maxWorkers
}

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task := <-wp.taskChan:
			task()
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit queues task for execution. It blocks while the queue is full.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	if task == nil {
		return nil
	}
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}

	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Do runs task on the pool and waits for it to finish.
func (wp *WorkerPool) Do(ctx context.Context, task func()) error {
	done := make(chan struct{})
	err := wp.Submit(ctx, func() {
		defer close(done)
		task()
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-wp.shutdownChan:
		// Workers exit only between tasks, so once they are gone the task
		// has either finished or was dropped from the queue.
		wp.workerWg.Wait()
		select {
		case <-done:
			return nil
		default:
			return ErrPoolShutdown
		}
	}
}

// Shutdown stops the workers after their current tasks complete. Queued
// tasks that have not started are dropped. The task channel stays open so
// a racing Submit never panics.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}
