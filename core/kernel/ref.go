package kernel

import (
	"context"
	"log/slog"

	"github.com/codewandler/kernel-go/core/executor"
)

// Runtime is the system context the kernel needs: a way to spawn tasks
// that must not run on the caller's goroutine. It is shared across
// goroutines.
type Runtime interface {
	Spawn(task executor.Task) (*executor.Handle, error)
}

// Ref is the handle to an actor's control channel. It is safe for
// concurrent use and cheap to copy around by pointer.
type Ref struct {
	ctrl    chan<- Msg
	done    <-chan struct{}
	log     *slog.Logger
	metrics Metrics
}

// NewRef creates a Ref over ctrl. Closing done marks the control channel
// dead: pending and future sends become no-ops.
func NewRef(ctrl chan<- Msg, done <-chan struct{}, log *slog.Logger, m Metrics) *Ref {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = NopMetrics()
	}
	return &Ref{ctrl: ctrl, done: done, log: log, metrics: m}
}

// Schedule asks the actor to sweep its mailbox.
func (k *Ref) Schedule(rt Runtime) { k.send(rt, Msg{Kind: RunActor}) }

func (k *Ref) Restart(rt Runtime) { k.send(rt, Msg{Kind: RestartActor}) }

func (k *Ref) Terminate(rt Runtime) { k.send(rt, Msg{Kind: TerminateActor}) }

// SysInit hands rt to the actor. Only the first one is honoured.
func (k *Ref) SysInit(rt Runtime) { k.send(rt, Msg{Kind: SysInit, Sys: rt}) }

// Dead reports whether the control channel is closed.
func (k *Ref) Dead() bool {
	select {
	case <-k.done:
		return true
	default:
		return false
	}
}

// send delivers msg from a spawned task. Every failure is swallowed.
func (k *Ref) send(rt Runtime, msg Msg) {
	ctrl, done, m := k.ctrl, k.done, k.metrics

	_, err := rt.Spawn(func(ctx context.Context) {
		select {
		case <-done:
			m.ControlSent(msg.Kind, false)
			return
		default:
		}

		select {
		case ctrl <- msg:
			m.ControlSent(msg.Kind, true)
		case <-done:
			m.ControlSent(msg.Kind, false)
		case <-ctx.Done():
			m.ControlSent(msg.Kind, false)
		}
	})
	if err != nil {
		m.ControlSent(msg.Kind, false)
		k.log.Debug("control message dropped", slog.String("kind", msg.Kind.String()), slog.Any("error", err))
	}
}
