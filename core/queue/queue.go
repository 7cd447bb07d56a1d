package queue

import (
	"context"
	"sync"
)

// New creates a queue and returns its two ends. A bound of 0 (or less)
// creates an unbounded queue whose enqueues fail only after the reader was
// closed; a positive bound fixes the capacity. An item parked by HasMsgs
// still counts against the bound until it is dequeued.
func New[T any](bound int, opts ...Option) (*Writer[T], *Reader[T]) {
	cfg := &config{backend: BackendAuto}
	for _, opt := range opts {
		opt(cfg)
	}

	b := newBackend[T](bound, cfg.backend)
	return &Writer[T]{b: b}, &Reader[T]{b: b}
}

// Writer is the producer end of a queue. It is safe for concurrent use and
// may be shared freely; it can outlive the reader.
type Writer[T any] struct {
	b backend[T]
}

// TryEnqueue adds v without blocking. On failure the returned
// *EnqueueError owns v again; its cause is ErrFull or ErrClosed.
func (w *Writer[T]) TryEnqueue(v T) error {
	if err := w.b.send(v); err != nil {
		return &EnqueueError[T]{Msg: v, Err: err}
	}
	return nil
}

// Closed reports whether the reader end has been closed.
func (w *Writer[T]) Closed() bool { return w.b.isClosed() }

// Len returns the number of queued items.
func (w *Writer[T]) Len() int { return w.b.len() }

// Reader is the consumer end of a queue. There is logically one consumer,
// but it may be driven from different goroutines over time; the lookahead
// slot is guarded by a mutex shared by every receive path.
type Reader[T any] struct {
	b backend[T]

	mu      sync.Mutex
	next    T
	hasNext bool
}

// TryDequeue returns the next item, or ErrEmpty if none is ready.
func (r *Reader[T]) TryDequeue() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.takeNextLocked(); ok {
		r.b.release()
		return v, nil
	}
	if v, ok := r.b.tryRecv(); ok {
		r.b.release()
		return v, nil
	}
	var zero T
	return zero, ErrEmpty
}

// Dequeue blocks until an item is ready, the context is done or the queue
// is closed and drained. The lookahead lock is not held while waiting.
func (r *Reader[T]) Dequeue(ctx context.Context) (T, error) {
	for {
		if v, err := r.TryDequeue(); err == nil {
			return v, nil
		}

		select {
		case <-r.b.ready():
		case <-r.b.done():
			if v, err := r.TryDequeue(); err == nil {
				return v, nil
			}
			var zero T
			return zero, ErrClosed
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// HasMsgs reports whether an item is ready without consuming it. A
// received item is parked in the lookahead slot and returned by the next
// dequeue; it keeps occupying its place in a bounded queue.
func (r *Reader[T]) HasMsgs() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasNext {
		return true
	}
	v, ok := r.b.tryRecv()
	if !ok {
		return false
	}
	r.next, r.hasNext = v, true
	return true
}

// Len returns the number of pending items including the lookahead slot.
func (r *Reader[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.b.len()
	if r.hasNext {
		n++
	}
	return n
}

// Close drops the reader: every further enqueue fails with ErrClosed.
// Items already queued can still be drained. Close is idempotent.
func (r *Reader[T]) Close() { r.b.close() }

// Closed reports whether Close has been called.
func (r *Reader[T]) Closed() bool { return r.b.isClosed() }

func (r *Reader[T]) takeNextLocked() (v T, ok bool) {
	if !r.hasNext {
		return v, false
	}
	v = r.next
	var zero T
	r.next, r.hasNext = zero, false
	return v, true
}
