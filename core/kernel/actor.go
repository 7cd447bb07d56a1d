package kernel

import (
	"context"
	"log/slog"

	"github.com/codewandler/kernel-go/core/mailbox"
)

type (
	// Actor handles the messages of one mailbox, one at a time.
	Actor[T any] interface {
		Receive(c *Context, env mailbox.Envelope[T])
	}

	// PreStarter is implemented by actors that need setup after SysInit and
	// after every restart.
	PreStarter interface {
		PreStart(c *Context)
	}

	// PostStopper is implemented by actors that need cleanup before a
	// restart or on termination.
	PostStopper interface {
		PostStop(c *Context)
	}

	// Props creates a fresh actor instance. It is called once at startup
	// and again on every restart.
	Props[T any] func() Actor[T]

	// ReceiveFunc adapts a function to the Actor interface.
	ReceiveFunc[T any] func(c *Context, env mailbox.Envelope[T])

	OnPanic func(recovered any, stack []byte, msg any)
)

func (f ReceiveFunc[T]) Receive(c *Context, env mailbox.Envelope[T]) { f(c, env) }

// Context is passed to actor callbacks.
type Context struct {
	context.Context
	id  string
	log *slog.Logger
	sys Runtime
}

func (c *Context) ID() string        { return c.id }
func (c *Context) Log() *slog.Logger { return c.log }

// System returns the runtime handed over by SysInit.
func (c *Context) System() Runtime { return c.sys }
