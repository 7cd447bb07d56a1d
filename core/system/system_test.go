package system

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/kernel-go/core/executor"
	"github.com/codewandler/kernel-go/core/kernel"
	"github.com/codewandler/kernel-go/core/mailbox"
)

type counter struct {
	n *atomic.Int64
}

func (c *counter) Receive(_ *kernel.Context, env mailbox.Envelope[int64]) { c.n.Add(env.Msg) }

func TestSystem_actor_of(t *testing.T) {
	sys := New(Options{Context: t.Context(), MaxConcurrentTasks: 4})
	defer sys.Close()
	require.NotEmpty(t, sys.ID())

	var sum atomic.Int64
	h, err := ActorOf(sys, func() kernel.Actor[int64] { return &counter{n: &sum} }, kernel.Options{ID: "counter"})
	require.NoError(t, err)
	require.Equal(t, "counter", h.ID())

	for i := int64(1); i <= 100; i++ {
		require.NoError(t, h.Tell(i, nil))
	}
	require.Eventually(t, func() bool { return sum.Load() == 5050 }, time.Second, time.Millisecond)
}

func TestSystem_close_stops_actors(t *testing.T) {
	sys := New(Options{Context: t.Context()})

	h, err := ActorOf(sys, func() kernel.Actor[int64] {
		return kernel.ReceiveFunc[int64](func(*kernel.Context, mailbox.Envelope[int64]) {})
	}, kernel.Options{})
	require.NoError(t, err)

	sys.Close()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	_, err = sys.Spawn(func(ctx context.Context) {})
	require.ErrorIs(t, err, executor.ErrClosed)
}

func TestSystem_actor_of_requires_props(t *testing.T) {
	sys := New(Options{Context: t.Context()})
	defer sys.Close()

	_, err := ActorOf[int](sys, nil, kernel.Options{})
	require.ErrorIs(t, err, kernel.ErrNoProps)
}
