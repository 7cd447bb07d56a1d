// Package queue provides the producer/consumer channel that backs every
// actor mailbox.
//
// A queue is created with [New] and split into a [Writer], which may be
// shared by any number of producers, and a single [Reader], owned by the
// consumer:
//
//	w, r := queue.New[Job](0)   // unbounded
//	w, r := queue.New[Job](128) // bounded, TryEnqueue fails when full
//
// Enqueueing never blocks. When the queue is full, or the reader has been
// closed, [Writer.TryEnqueue] returns an [*EnqueueError] carrying the
// rejected item so the caller can decide what to do with it.
//
// [Reader.HasMsgs] checks for pending items without losing them: a
// received item is parked in a single-slot lookahead buffer and handed out
// by the next dequeue before the underlying channel is consulted again.
// The parked item still counts against the bound, so a queue of capacity N
// never holds more than N items.
//
// The storage behind a queue is selected with [WithBackend] and is
// invisible to callers after construction.
package queue
