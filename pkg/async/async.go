// Package async provides a minimal task/future primitive for fanning out
// independent operations and collecting their outcomes.
package async

import (
	"context"
	"errors"
	"time"
)

// Task represents an in-flight asynchronous computation.
type Task[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Run executes fn in its own goroutine and returns a Task for its outcome.
// If ctx is already canceled the function is not invoked and the task
// completes with ctx.Err().
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		if err := ctx.Err(); err != nil {
			t.err = err
			return
		}
		t.result, t.err = fn(ctx)
	}()

	return t
}

// Wait blocks until the task completes and returns its outcome.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.result, t.err
}

// WaitTimeout waits for completion for at most d. If the task is still
// running when d elapses it keeps running; only the wait is abandoned.
func (t *Task[T]) WaitTimeout(d time.Duration) (T, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-t.done:
		return t.result, t.err
	case <-timer.C:
		var zero T
		return zero, ErrWaitTimeout
	}
}

// Done reports whether the task has completed, without blocking.
func (t *Task[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// All waits for every task and returns their results in task order. Errors
// from individual tasks are joined; results of failed tasks are the zero
// value at their position.
func All[T any](tasks ...*Task[T]) ([]T, error) {
	results := make([]T, len(tasks))
	var errs []error

	for i, t := range tasks {
		result, err := t.Wait()
		results[i] = result
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}
