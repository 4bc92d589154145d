package async

import (
	"context"
	"errors"
)

// ErrSlotOccupied is returned by Slot.Start while a previous task is still
// running or its result has not been taken.
var ErrSlotOccupied = errors.New("a task is already pending in this slot")

// PendingTask is the handle of a fire-and-forget operation. It is polled,
// never waited on.
type PendingTask[R any] struct {
	done   chan struct{}
	result R
	err    error
}

// Spawn starts op on the executor without a deadline.
func Spawn[R any](e *Executor, name string, op func(context.Context) (R, error)) *PendingTask[R] {
	t := &PendingTask[R]{done: make(chan struct{})}
	err := e.Go(e.Context(), name, func(ctx context.Context) error {
		defer close(t.done)
		t.result, t.err = op(ctx)
		return t.err
	})
	if err != nil {
		t.err = err
		close(t.done)
	}
	return t
}

// Finished reports whether the operation completed.
func (t *PendingTask[R]) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome once Finished; ok is false while running.
func (t *PendingTask[R]) Result() (result R, err error, ok bool) {
	if !t.Finished() {
		var zero R
		return zero, nil, false
	}
	return t.result, t.err, true
}

// Slot holds at most one PendingTask. A finished result stays in the slot
// until it is taken or cleared.
type Slot[R any] struct {
	task *PendingTask[R]
}

// Start spawns op into the slot.
func (s *Slot[R]) Start(e *Executor, name string, op func(context.Context) (R, error)) error {
	if s.task != nil {
		return ErrSlotOccupied
	}
	s.task = Spawn(e, name, op)
	return nil
}

// Occupied reports whether the slot holds a task in any state.
func (s *Slot[R]) Occupied() bool { return s.task != nil }

func (s *Slot[R]) Running() bool { return s.task != nil && !s.task.Finished() }

func (s *Slot[R]) Finished() bool { return s.task != nil && s.task.Finished() }

// Peek returns the finished result and leaves it in the slot.
func (s *Slot[R]) Peek() (result R, err error, ok bool) {
	if !s.Finished() {
		var zero R
		return zero, nil, false
	}
	return s.task.Result()
}

// Take returns the finished result and empties the slot.
func (s *Slot[R]) Take() (result R, err error, ok bool) {
	if !s.Finished() {
		var zero R
		return zero, nil, false
	}
	result, err, ok = s.task.Result()
	s.task = nil
	return result, err, ok
}

// Clear drops a finished result. It reports false and keeps the task while it
// is still running.
func (s *Slot[R]) Clear() bool {
	if s.Running() {
		return false
	}
	s.task = nil
	return true
}
