package queue

import (
	"sync"
	"sync/atomic"
)

// backend is the storage contract shared by all queue implementations.
// send and tryRecv never block. Every successful send pokes ready, which
// has a capacity of one, so a parked consumer can't miss a wakeup.
type backend[T any] interface {
	send(v T) error
	tryRecv() (T, bool)
	// release frees the slot of an item handed to the consumer. An item
	// parked in the reader's lookahead keeps its slot until then.
	release()
	ready() <-chan struct{}
	done() <-chan struct{}
	close()
	isClosed() bool
	len() int
}

func newBackend[T any](bound int, kind Backend) backend[T] {
	if bound > 0 && kind != BackendList {
		return newChanBackend[T](bound)
	}
	return newListBackend[T](bound)
}

// signal is a level-triggered notification with a single token.
type signal struct {
	c chan struct{}
}

func newSignal() signal { return signal{c: make(chan struct{}, 1)} }

func (s signal) notify() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

// closer guards the closed state. Senders hold the read lock for the whole
// send so that no item lands after close returned.
type closer struct {
	mu     sync.RWMutex
	closed bool
	doneCh chan struct{}
}

func newCloser() closer { return closer{doneCh: make(chan struct{})} }

func (c *closer) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.doneCh)
}

func (c *closer) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// slots enforces the bound over every item not yet handed out.
type slots struct {
	max  int64 // 0 = unbounded
	used atomic.Int64
}

func (s *slots) acquire() bool {
	if s.max <= 0 {
		return true
	}
	for {
		n := s.used.Load()
		if n >= s.max {
			return false
		}
		if s.used.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *slots) release() {
	if s.max > 0 {
		s.used.Add(-1)
	}
}

// ---- channel backend ----

type chanBackend[T any] struct {
	closer
	slots
	ch  chan T
	sig signal
}

func newChanBackend[T any](bound int) *chanBackend[T] {
	b := &chanBackend[T]{
		closer: newCloser(),
		ch:     make(chan T, bound),
		sig:    newSignal(),
	}
	b.max = int64(bound)
	return b
}

func (b *chanBackend[T]) send(v T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	if !b.acquire() {
		return ErrFull
	}
	select {
	case b.ch <- v:
		b.sig.notify()
		return nil
	default:
		b.release()
		return ErrFull
	}
}

func (b *chanBackend[T]) tryRecv() (v T, ok bool) {
	select {
	case v = <-b.ch:
		return v, true
	default:
		return v, false
	}
}

func (b *chanBackend[T]) ready() <-chan struct{} { return b.sig.c }
func (b *chanBackend[T]) done() <-chan struct{}  { return b.doneCh }
func (b *chanBackend[T]) len() int               { return len(b.ch) }

// ---- list backend ----

type node[T any] struct {
	v    T
	next *node[T]
}

type listBackend[T any] struct {
	closer
	slots
	lmu  sync.Mutex
	head *node[T]
	tail *node[T]
	n    int
	sig  signal
}

func newListBackend[T any](bound int) *listBackend[T] {
	b := &listBackend[T]{
		closer: newCloser(),
		sig:    newSignal(),
	}
	if bound > 0 {
		b.max = int64(bound)
	}
	return b
}

func (b *listBackend[T]) send(v T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	if !b.acquire() {
		return ErrFull
	}

	b.lmu.Lock()
	nd := &node[T]{v: v}
	if b.tail == nil {
		b.head = nd
	} else {
		b.tail.next = nd
	}
	b.tail = nd
	b.n++
	b.lmu.Unlock()

	b.sig.notify()
	return nil
}

func (b *listBackend[T]) tryRecv() (v T, ok bool) {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	if b.head == nil {
		return v, false
	}
	nd := b.head
	b.head = nd.next
	if b.head == nil {
		b.tail = nil
	}
	b.n--
	return nd.v, true
}

func (b *listBackend[T]) len() int {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	return b.n
}

func (b *listBackend[T]) ready() <-chan struct{} { return b.sig.c }
func (b *listBackend[T]) done() <-chan struct{}  { return b.doneCh }
