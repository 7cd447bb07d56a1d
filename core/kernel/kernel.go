package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/kernel-go/core/addr"
	"github.com/codewandler/kernel-go/core/mailbox"
	"github.com/codewandler/kernel-go/core/queue"
)

var ErrNoProps = errors.New("props required")

type Options struct {
	ID      string
	Context context.Context
	Logger  *slog.Logger
	// MailboxSize bounds the mailbox. 0 means unbounded.
	MailboxSize int
	Backend     queue.Backend
	ControlSize int
	// Throughput is the maximum number of messages handled per run before
	// the kernel yields to pending control messages.
	Throughput int
	OnPanic    OnPanic
	Metrics    Metrics
}

// Handle is the producer-facing side of a running actor.
type Handle[T any] struct {
	id   string
	rt   Runtime
	mbox *mailbox.Sender[T]
	ref  *Ref
	done <-chan struct{}
}

func (h *Handle[T]) ID() string                  { return h.id }
func (h *Handle[T]) Mailbox() *mailbox.Sender[T] { return h.mbox }
func (h *Handle[T]) Kernel() *Ref                { return h.ref }

// Done is closed once the actor has terminated.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Tell dispatches msg to the actor. from may be nil.
func (h *Handle[T]) Tell(msg T, from *addr.URI) error {
	return Dispatch(mailbox.Envelope[T]{Sender: from, Msg: msg}, h.mbox, h.ref, h.rt)
}

// TellAny dispatches a message whose type is only known at runtime.
func (h *Handle[T]) TellAny(msg any, from *addr.URI) error {
	return DispatchAny(msg, from, h.mbox, h.ref, h.rt)
}

func (h *Handle[T]) Restart()   { h.ref.Restart(h.rt) }
func (h *Handle[T]) Terminate() { h.ref.Terminate(h.rt) }

// Stop requests termination and waits for it.
func (h *Handle[T]) Stop(ctx context.Context) error {
	h.Terminate()
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop actor %s: %w", h.id, ctx.Err())
	}
}

// Start creates the actor's mailbox and control channel, starts its
// kernel and sends SysInit(rt).
func Start[T any](rt Runtime, props Props[T], opt Options) (*Handle[T], error) {
	k, h, err := newKernel(rt, props, opt)
	if err != nil {
		return nil, err
	}
	go k.loop()
	h.ref.SysInit(rt)
	return h, nil
}

type kernel[T any] struct {
	id  string
	ctx context.Context
	log *slog.Logger

	rt  Runtime // used to schedule runs
	sys Runtime // set by SysInit

	ref  *Ref
	ctrl chan Msg
	done chan struct{}
	mbox *mailbox.Receiver[T]

	props Props[T]
	actor Actor[T]
	actx  *Context

	throughput int
	onPanic    OnPanic
	metrics    Metrics
}

func newKernel[T any](rt Runtime, props Props[T], opt Options) (*kernel[T], *Handle[T], error) {
	if props == nil {
		return nil, nil, ErrNoProps
	}
	if opt.ID == "" {
		opt.ID = fmt.Sprintf("actor-%s", gonanoid.Must(8))
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.ControlSize <= 0 {
		opt.ControlSize = 16
	}
	if opt.Throughput <= 0 {
		opt.Throughput = 10
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}

	log := opt.Logger.With(slog.String("actor", opt.ID))
	if opt.OnPanic == nil {
		opt.OnPanic = func(recovered any, stack []byte, msg any) {
			log.Error("actor panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)), slog.Any("msg", msg))
		}
	}

	ctrl := make(chan Msg, opt.ControlSize)
	done := make(chan struct{})
	tx, rx := mailbox.New[T](opt.MailboxSize, queue.WithBackend(opt.Backend))
	ref := NewRef(ctrl, done, log, opt.Metrics)

	k := &kernel[T]{
		id:         opt.ID,
		ctx:        opt.Context,
		log:        log,
		rt:         rt,
		ref:        ref,
		ctrl:       ctrl,
		done:       done,
		mbox:       rx,
		props:      props,
		throughput: opt.Throughput,
		onPanic:    opt.OnPanic,
		metrics:    opt.Metrics,
	}
	h := &Handle[T]{
		id:   opt.ID,
		rt:   rt,
		mbox: tx,
		ref:  ref,
		done: done,
	}
	return k, h, nil
}

func (k *kernel[T]) loop() {
	defer close(k.done)

	// a run requested before SysInit waits for it
	pendingRun := false

	for {
		select {
		case <-k.ctx.Done():
			k.terminate()
			return
		case msg := <-k.ctrl:
			switch msg.Kind {
			case SysInit:
				if k.sys != nil || msg.Sys == nil {
					continue
				}
				k.sys = msg.Sys
				k.start()
				if pendingRun {
					pendingRun = false
					k.run()
				}
			case RunActor:
				if k.sys == nil {
					pendingRun = true
					continue
				}
				k.run()
			case RestartActor:
				if k.sys == nil {
					// SysInit starts a fresh instance anyway
					k.log.Debug("restart before sys init ignored")
					continue
				}
				k.log.Debug("restarting actor")
				k.stopActor()
				k.start()
			case TerminateActor:
				k.terminate()
				return
			}
		}
	}
}

// run sweeps the mailbox once.
func (k *kernel[T]) run() {
	defer k.metrics.SweepDuration().ObserveDuration()

	n, dropped := 0, 0
	for n < k.throughput {
		env, err := k.mbox.TryDequeue()
		if err != nil {
			break
		}
		n++
		if k.actor == nil {
			dropped++
			continue
		}
		k.guard(env.Msg, func() { k.actor.Receive(k.actx, env) })
	}
	k.metrics.MessagesProcessed(k.id, n-dropped)
	if dropped > 0 {
		k.metrics.DeadLetters(k.id, dropped)
		k.log.Debug("no actor instance, dropped messages", slog.Int("count", dropped))
	}
	k.metrics.MailboxDepth(k.id, k.mbox.Len())

	if n == k.throughput && k.mbox.HasMsgs() {
		// still scheduled; come back after pending control messages
		k.ref.Schedule(k.rt)
		return
	}
	settle(k.mbox, k.ref, k.rt)
}

// settle returns the mailbox to idle and rechecks it.
func settle[T any](mbox *mailbox.Receiver[T], k *Ref, rt Runtime) bool {
	mbox.SetScheduled(false)
	return recheck(mbox, k, rt)
}

// recheck schedules a run for messages that arrived while the flag was
// still set. Their producers saw a pending run and did not schedule.
func recheck[T any](mbox *mailbox.Receiver[T], k *Ref, rt Runtime) bool {
	if mbox.HasMsgs() && mbox.TrySchedule() {
		k.Schedule(rt)
		return true
	}
	return false
}

func (k *kernel[T]) start() {
	k.actor = nil
	k.guard(nil, func() { k.actor = k.props() })
	if k.actor == nil {
		k.log.Error("props returned no actor")
		return
	}
	k.actx = &Context{Context: k.ctx, id: k.id, log: k.log, sys: k.sys}
	if ps, ok := k.actor.(PreStarter); ok {
		k.guard(nil, func() { ps.PreStart(k.actx) })
	}
}

func (k *kernel[T]) stopActor() {
	if k.actor == nil {
		return
	}
	if ps, ok := k.actor.(PostStopper); ok {
		k.guard(nil, func() { ps.PostStop(k.actx) })
	}
}

func (k *kernel[T]) terminate() {
	k.stopActor()
	k.mbox.Close()

	dropped := 0
	for {
		if _, err := k.mbox.TryDequeue(); err != nil {
			break
		}
		dropped++
	}
	if dropped > 0 {
		k.metrics.DeadLetters(k.id, dropped)
		k.log.Debug("dropped undelivered messages", slog.Int("count", dropped))
	}
	k.log.Debug("actor terminated")
}

// guard runs f with crash containment.
func (k *kernel[T]) guard(msg any, f func()) {
	defer func() {
		if r := recover(); r != nil {
			k.metrics.MessagePanic(k.id)
			k.onPanic(r, debug.Stack(), msg)
		}
	}()
	f()
}
