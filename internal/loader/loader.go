// Package loader runs one asynchronous fetch and exposes its progress as a
// small state machine: Loading, then exactly one of Loaded or Failed.
package loader

import (
	"context"

	"wowtoc/internal/cache"
)

// Phase is the lifecycle position of a Task.
type Phase int

const (
	Loading Phase = iota
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// State is an immutable view of a Task at one point in time.
type State[T any] struct {
	Phase Phase
	Data  T
	Err   error
}

// Task is a single fetch started by Start. It is never retried.
type Task[T any] struct {
	state cache.Snapshot[State[T]]
	done  chan struct{}
}

// Start launches fetch in its own goroutine and returns immediately.
func Start[T any](ctx context.Context, fetch func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	t.state.Store(State[T]{Phase: Loading})

	go func() {
		defer close(t.done)
		data, err := fetch(ctx)
		if err != nil {
			t.state.Store(State[T]{Phase: Failed, Err: err})
			return
		}
		t.state.Store(State[T]{Phase: Loaded, Data: data})
	}()
	return t
}

// State returns the current state without blocking.
func (t *Task[T]) State() State[T] {
	s, _ := t.state.Load()
	return s
}

// Loading reports whether the fetch is still in flight.
func (t *Task[T]) Loading() bool {
	return t.State().Phase == Loading
}

// Done is closed once the task has settled.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx is done, whichever comes first,
// and returns the state observed at that moment.
func (t *Task[T]) Wait(ctx context.Context) State[T] {
	select {
	case <-t.done:
	case <-ctx.Done():
	}
	return t.State()
}
