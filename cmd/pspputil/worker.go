package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one unit of batch work: converting or summarizing a single
// file. Adapted from teacher's parser.Task/WorkerPool (parser/worker.go):
// the pool parallelizes across files, never within one dictionary or
// casefile (spec §5 — the core itself is single-threaded).
type Task interface {
	Execute() error
}

// WorkerPool runs Tasks concurrently with a bounded queue and a
// per-task timeout.
type WorkerPool struct {
	workers      int
	queue        chan Task
	done         chan struct{}
	errorHandler func(error)
	wg           sync.WaitGroup
	taskCount    int32
	metrics      *WorkerMetrics
	taskTimeout  time.Duration
}

// WorkerMetrics tallies task outcomes across the pool's lifetime.
type WorkerMetrics struct {
	TasksProcessed int64
	TasksSucceeded int64
	TasksFailed    int64
}

// NewWorkerPool creates a pool of workers workers with a queue sized
// queueSize.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &WorkerPool{
		workers:     workers,
		queue:       make(chan Task, queueSize),
		done:        make(chan struct{}),
		taskTimeout: 5 * time.Minute,
		metrics:     &WorkerMetrics{},
		errorHandler: func(err error) {
			fmt.Println("pspputil: worker error:", err)
		},
	}
}

// Start launches the pool's worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.wg.Add(wp.workers)
	for i := 0; i < wp.workers; i++ {
		go wp.worker(ctx)
	}
}

// Stop signals every worker to finish the tasks still queued and exit,
// and waits for them.
func (wp *WorkerPool) Stop() {
	close(wp.done)
	wp.wg.Wait()
}

// Submit enqueues task, failing if the pool is stopped or the queue
// is full.
func (wp *WorkerPool) Submit(task Task) error {
	select {
	case wp.queue <- task:
		atomic.AddInt32(&wp.taskCount, 1)
		return nil
	case <-wp.done:
		return errors.New("pspputil: worker pool is stopped")
	default:
		return errors.New("pspputil: worker queue is full")
	}
}

func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-wp.done:
			for {
				select {
				case task := <-wp.queue:
					wp.runTask(ctx, task)
					atomic.AddInt32(&wp.taskCount, -1)
				default:
					return
				}
			}
		case task := <-wp.queue:
			wp.runTask(ctx, task)
			atomic.AddInt32(&wp.taskCount, -1)
		}
	}
}

func (wp *WorkerPool) runTask(ctx context.Context, task Task) {
	timeoutCtx, cancel := context.WithTimeout(ctx, wp.taskTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- task.Execute() }()

	select {
	case <-timeoutCtx.Done():
		if wp.errorHandler != nil {
			wp.errorHandler(timeoutCtx.Err())
		}
		atomic.AddInt64(&wp.metrics.TasksFailed, 1)
	case err := <-done:
		if err != nil {
			if wp.errorHandler != nil {
				wp.errorHandler(err)
			}
			atomic.AddInt64(&wp.metrics.TasksFailed, 1)
		} else {
			atomic.AddInt64(&wp.metrics.TasksSucceeded, 1)
		}
	}
	atomic.AddInt64(&wp.metrics.TasksProcessed, 1)
}

// GetMetrics returns a copy of the pool's task counters.
func (wp *WorkerPool) GetMetrics() WorkerMetrics {
	return WorkerMetrics{
		TasksProcessed: atomic.LoadInt64(&wp.metrics.TasksProcessed),
		TasksSucceeded: atomic.LoadInt64(&wp.metrics.TasksSucceeded),
		TasksFailed:    atomic.LoadInt64(&wp.metrics.TasksFailed),
	}
}
