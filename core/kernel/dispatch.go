package kernel

import (
	"fmt"

	"github.com/codewandler/kernel-go/core/addr"
	"github.com/codewandler/kernel-go/core/mailbox"
)

// DispatchError is returned when the envelope could not be enqueued. Msg
// hands the envelope back; Err is the enqueue failure.
type DispatchError[T any] struct {
	Msg mailbox.Envelope[T]
	Err error
}

func (e *DispatchError[T]) Error() string { return fmt.Sprintf("dispatch failed: %v", e.Err) }
func (e *DispatchError[T]) Unwrap() error { return e.Err }

// Dispatch enqueues env and, if the mailbox was idle, asks the kernel to
// run the actor. A failed enqueue has no scheduling side effect; retrying
// or dropping is up to the caller.
func Dispatch[T any](env mailbox.Envelope[T], mbox *mailbox.Sender[T], k *Ref, rt Runtime) error {
	if err := mbox.TryEnqueue(env); err != nil {
		k.metrics.Dispatched(DispatchRejected)
		return &DispatchError[T]{Msg: env, Err: err}
	}

	if mbox.TrySchedule() {
		k.metrics.Dispatched(DispatchScheduled)
		k.Schedule(rt)
		return nil
	}

	// someone else owns the pending run
	k.metrics.Dispatched(DispatchCoalesced)
	return nil
}

// DispatchAny is Dispatch for callers that only hold the type-erased
// mailbox capability.
func DispatchAny(msg any, from *addr.URI, mbox mailbox.AnySender, k *Ref, rt Runtime) error {
	if err := mbox.TryEnqueueAny(msg, from); err != nil {
		k.metrics.Dispatched(DispatchRejected)
		return &DispatchError[any]{Msg: mailbox.Envelope[any]{Sender: from, Msg: msg}, Err: err}
	}

	if mbox.TrySchedule() {
		k.metrics.Dispatched(DispatchScheduled)
		k.Schedule(rt)
		return nil
	}

	k.metrics.Dispatched(DispatchCoalesced)
	return nil
}
