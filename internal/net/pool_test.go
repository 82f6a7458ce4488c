package net

import (
	"testing"
	"time"

	tomb "gopkg.in/tomb.v2"
)

// --- WorkerPool ---

func TestAddTask_DoesNotBlockWhenQueueFull(t *testing.T) {
	// No workers draining: the queue fills up and stays full.
	pool := NewWorkerPool(0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < taskChanSize+50; i++ {
			pool.AddTask(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AddTask blocked with a full queue")
	}
}

func TestWorkerPool_DrainsQueuedTasks(t *testing.T) {
	pool := NewWorkerPool(2)

	seen := make(chan any, taskChanSize)
	var tb tomb.Tomb
	pool.Setup(&tb, func(_ *tomb.Tomb, task any) error {
		seen <- task
		return nil
	})
	defer func() {
		tb.Kill(nil)
		_ = tb.Wait()
	}()

	for i := 0; i < 10; i++ {
		pool.AddTask(i)
	}

	got := make(map[any]bool)
	for i := 0; i < 10; i++ {
		select {
		case task := <-seen:
			got[task] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 10 tasks processed", len(got))
		}
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 distinct tasks, got %d", len(got))
	}
}
