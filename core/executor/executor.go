// Package executor runs short-lived tasks on their own goroutines without
// ever blocking the caller. A Pool can cap how many tasks run at once;
// excess tasks wait for a slot inside their own goroutine.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Spawn after Close.
var ErrClosed = errors.New("executor closed")

type (
	// Task is a unit of work. ctx is cancelled when the pool is closed.
	Task func(ctx context.Context)

	Executor interface {
		Spawn(task Task) (*Handle, error)
	}
)

// Handle tracks a spawned task.
type Handle struct {
	done chan struct{}
	ran  atomic.Bool
}

// Done is closed when the task returned, panicked or was abandoned
// because the pool shut down before it got a slot.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Ran reports whether the task was started. Valid after Done is closed.
func (h *Handle) Ran() bool { return h.ran.Load() }

// Wait blocks until the task is done or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Options struct {
	Context context.Context
	Logger  *slog.Logger
	// MaxConcurrent caps the number of tasks running at once.
	// If 0 or negative, concurrency is unlimited.
	MaxConcurrent int
	Metrics       Metrics
}

type Pool struct {
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger
	inflight atomic.Int32
	sem      *semaphore.Weighted
	metrics  Metrics

	mu     sync.RWMutex
	closed bool

	wmu     sync.Mutex
	pending int
	idle    chan struct{} // closed while no task is pending
}

// New creates a pool. The pool context is derived from opt.Context.
func New(opt Options) *Pool {
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}

	var sem *semaphore.Weighted
	if opt.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(opt.MaxConcurrent))
	}

	idle := make(chan struct{})
	close(idle)

	ctx, cancel := context.WithCancel(opt.Context)
	return &Pool{
		ctx:     ctx,
		cancel:  cancel,
		log:     opt.Logger,
		sem:     sem,
		metrics: opt.Metrics,
		idle:    idle,
	}
}

// Spawn starts task asynchronously and returns immediately.
func (p *Pool) Spawn(task Task) (*Handle, error) {
	p.mu.RLock()
	if p.closed || p.ctx.Err() != nil {
		p.mu.RUnlock()
		p.metrics.TaskRejected()
		return nil, ErrClosed
	}
	p.track()
	p.mu.RUnlock()

	h := &Handle{done: make(chan struct{})}
	go func() {
		defer p.untrack()
		defer close(h.done)

		if p.sem != nil {
			if err := p.sem.Acquire(p.ctx, 1); err != nil {
				p.metrics.TaskRejected()
				return
			}
			defer p.sem.Release(1)
		}

		count := p.inflight.Add(1)
		p.metrics.TasksInflight(int(count))
		defer func() {
			count := p.inflight.Add(-1)
			p.metrics.TasksInflight(int(count))
		}()

		h.ran.Store(true)
		p.runTask(task)
	}()
	return h, nil
}

func (p *Pool) runTask(task Task) {
	defer p.metrics.TaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			p.metrics.TaskCompleted(false)
			// log the panic but don't re-panic
			p.log.Error("task panicked", slog.Any("recovered", r))
		}
	}()

	task(p.ctx)
	p.metrics.TaskCompleted(true)
}

// Inflight returns the number of tasks currently running.
func (p *Pool) Inflight() int { return int(p.inflight.Load()) }

// Wait blocks until the pool has no pending task. It may be called
// concurrently with Spawn.
func (p *Pool) Wait() { <-p.idleCh() }

func (p *Pool) track() {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	if p.pending == 0 {
		p.idle = make(chan struct{})
	}
	p.pending++
}

func (p *Pool) untrack() {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
}

func (p *Pool) idleCh() <-chan struct{} {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.idle
}

// Close rejects new tasks, cancels the pool context and waits for running
// tasks to return. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.Wait()
}

var _ Executor = (*Pool)(nil)
