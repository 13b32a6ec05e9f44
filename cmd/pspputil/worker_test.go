package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testTask struct{ id string }

func (tt *testTask) Execute() error { return nil }

func TestNewWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool(0, 0)
	assert.NotNil(t, pool)
	assert.Equal(t, 1, pool.workers)
	assert.NotNil(t, pool.queue)
}

func TestWorkerPoolSubmitQueueFullAndStopped(t *testing.T) {
	pool := NewWorkerPool(0, 1)
	task := &testTask{id: "t"}

	assert.NoError(t, pool.Submit(task))
	assert.Error(t, pool.Submit(task), "queue of size 1 should reject a second unstarted task")

	pool.Stop()
	assert.Error(t, pool.Submit(task), "submit after Stop should fail")
}

func TestWorkerPoolProcessesSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(2, 10)
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	for i := 0; i < 5; i++ {
		task := &testTask{id: fmt.Sprintf("task-%d", i)}
		assert.NoError(t, pool.Submit(task))
	}

	time.Sleep(200 * time.Millisecond)

	metrics := pool.GetMetrics()
	assert.GreaterOrEqual(t, metrics.TasksProcessed, int64(5))
	assert.Equal(t, metrics.TasksProcessed, metrics.TasksSucceeded)
}
