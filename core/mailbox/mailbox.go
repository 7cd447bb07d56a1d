// Package mailbox pairs an actor's message queue with its scheduling state.
//
// Producers hold a [Sender]; the actor's run loop holds the single
// [Receiver]. Both share one scheduled flag: true means a run has been
// requested and the mailbox has not been confirmed drained since.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/codewandler/kernel-go/core/addr"
	"github.com/codewandler/kernel-go/core/queue"
)

// ErrUnexpectedType is returned by TryEnqueueAny for a payload of the wrong type.
var ErrUnexpectedType = errors.New("unexpected message type")

// Envelope carries a message and its optional originator. It is moved
// through the queue, never shared.
type Envelope[T any] struct {
	Sender *addr.URI
	Msg    T
}

// AnySender is the mailbox capability for callers that don't know the
// concrete message type.
type AnySender interface {
	TryEnqueueAny(msg any, from *addr.URI) error
	IsScheduled() bool
	SetScheduled(b bool)
	TrySchedule() bool
}

type state struct {
	scheduled atomic.Bool
}

// New creates a mailbox. A bound of 0 makes it unbounded.
func New[T any](bound int, opts ...queue.Option) (*Sender[T], *Receiver[T]) {
	w, r := queue.New[Envelope[T]](bound, opts...)
	st := &state{}
	return &Sender[T]{w: w, st: st}, &Receiver[T]{r: r, st: st}
}

// ---- Sender ----

// Sender is the producer side of a mailbox, shared by all producers.
type Sender[T any] struct {
	w  *queue.Writer[Envelope[T]]
	st *state
}

// TryEnqueue queues env without blocking. A rejected envelope is returned
// inside a *queue.EnqueueError[Envelope[T]].
func (s *Sender[T]) TryEnqueue(env Envelope[T]) error {
	return s.w.TryEnqueue(env)
}

// TryEnqueueAny is TryEnqueue for a payload of unknown static type.
func (s *Sender[T]) TryEnqueueAny(msg any, from *addr.URI) error {
	m, ok := msg.(T)
	if !ok {
		var z T
		return fmt.Errorf("%w: got %T, want %T", ErrUnexpectedType, msg, z)
	}
	return s.TryEnqueue(Envelope[T]{Sender: from, Msg: m})
}

// IsScheduled reports the current flag value. It must not be used to
// decide whether to schedule; use TrySchedule.
func (s *Sender[T]) IsScheduled() bool   { return s.st.scheduled.Load() }
func (s *Sender[T]) SetScheduled(b bool) { s.st.scheduled.Store(b) }

// TrySchedule flips the flag from idle to scheduled. It returns true only
// for the single caller that performed the transition.
func (s *Sender[T]) TrySchedule() bool { return s.st.scheduled.CompareAndSwap(false, true) }

// Closed reports whether the receiving side has been closed.
func (s *Sender[T]) Closed() bool { return s.w.Closed() }

func (s *Sender[T]) Len() int { return s.w.Len() }

var _ AnySender = (*Sender[int])(nil)

// ---- Receiver ----

// Receiver is the consumer side of a mailbox. Only one run loop may use it
// at a time.
type Receiver[T any] struct {
	r  *queue.Reader[Envelope[T]]
	st *state
}

func (r *Receiver[T]) TryDequeue() (Envelope[T], error) { return r.r.TryDequeue() }

func (r *Receiver[T]) Dequeue(ctx context.Context) (Envelope[T], error) {
	return r.r.Dequeue(ctx)
}

func (r *Receiver[T]) HasMsgs() bool { return r.r.HasMsgs() }
func (r *Receiver[T]) Len() int      { return r.r.Len() }

// Close rejects all further enqueues. Queued envelopes stay drainable.
func (r *Receiver[T]) Close() { r.r.Close() }

func (r *Receiver[T]) IsScheduled() bool   { return r.st.scheduled.Load() }
func (r *Receiver[T]) SetScheduled(b bool) { r.st.scheduled.Store(b) }
func (r *Receiver[T]) TrySchedule() bool   { return r.st.scheduled.CompareAndSwap(false, true) }
