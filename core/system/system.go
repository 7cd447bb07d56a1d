// Package system provides the runtime context shared by all actors of one
// process: the task executor, the root context, logging and metrics.
package system

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/kernel-go/core/executor"
	"github.com/codewandler/kernel-go/core/kernel"
)

type Options struct {
	ID      string
	Context context.Context
	Log     *slog.Logger
	// MaxConcurrentTasks caps the number of concurrently running control
	// message tasks. If 0 or negative, it is unlimited.
	MaxConcurrentTasks int
	KernelMetrics      kernel.Metrics
	ExecutorMetrics    executor.Metrics
}

type System struct {
	id        string
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       *slog.Logger
	exec      *executor.Pool
	metrics   kernel.Metrics
}

func New(opt Options) *System {
	if opt.ID == "" {
		opt.ID = fmt.Sprintf("sys-%s", gonanoid.Must(6))
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Log == nil {
		opt.Log = slog.Default()
	}
	if opt.KernelMetrics == nil {
		opt.KernelMetrics = kernel.NopMetrics()
	}

	s := &System{
		id:      opt.ID,
		log:     opt.Log.With(slog.String("system", opt.ID)),
		metrics: opt.KernelMetrics,
	}
	s.ctx, s.cancelCtx = context.WithCancel(opt.Context)
	s.exec = executor.New(executor.Options{
		Context:       s.ctx,
		Logger:        s.log,
		MaxConcurrent: opt.MaxConcurrentTasks,
		Metrics:       opt.ExecutorMetrics,
	})
	return s
}

func (s *System) ID() string               { return s.id }
func (s *System) Log() *slog.Logger        { return s.log }
func (s *System) Context() context.Context { return s.ctx }

// Spawn runs task on the system executor.
func (s *System) Spawn(task executor.Task) (*executor.Handle, error) {
	return s.exec.Spawn(task)
}

// Close stops every actor started on s and waits for in-flight tasks.
func (s *System) Close() {
	s.cancelCtx()
	s.exec.Close()
	s.log.Debug("system closed")
}

// ActorOf starts an actor with the system's context, logger and metrics
// filled in where opts leaves them empty.
func ActorOf[T any](s *System, props kernel.Props[T], opts kernel.Options) (*kernel.Handle[T], error) {
	if opts.Context == nil {
		opts.Context = s.ctx
	}
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	if opts.Metrics == nil {
		opts.Metrics = s.metrics
	}
	h, err := kernel.Start(s, props, opts)
	if err != nil {
		return nil, fmt.Errorf("start actor: %w", err)
	}
	s.log.Debug("actor started", slog.String("actor", h.ID()))
	return h, nil
}

var _ kernel.Runtime = (*System)(nil)
