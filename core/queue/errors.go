package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty signals that no item is ready. It is a polling result, not a failure.
	ErrEmpty = errors.New("queue empty")
	// ErrFull is the cause of an EnqueueError on a bounded queue at capacity.
	ErrFull = errors.New("queue full")
	// ErrClosed is returned once the reader side has been closed.
	ErrClosed = errors.New("queue closed")
)

// EnqueueError is returned by TryEnqueue when an item could not be queued.
// Msg hands the rejected item back to the caller.
type EnqueueError[T any] struct {
	Msg T
	Err error
}

func (e *EnqueueError[T]) Error() string { return fmt.Sprintf("enqueue failed: %v", e.Err) }
func (e *EnqueueError[T]) Unwrap() error { return e.Err }
