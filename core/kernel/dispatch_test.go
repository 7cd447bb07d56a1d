package kernel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/kernel-go/core/addr"
	"github.com/codewandler/kernel-go/core/mailbox"
	"github.com/codewandler/kernel-go/core/queue"
)

type seqMsg struct {
	producer int
	seq      int
}

func TestDispatch_schedules_once_for_concurrent_burst(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[seqMsg](0)

	const (
		producers = 16
		perProd   = 200
	)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				err := Dispatch(mailbox.Envelope[seqMsg]{Msg: seqMsg{p, i}}, tx, tk.ref, tk.pool)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}(p)
	}
	close(start)
	wg.Wait()

	msgs := tk.received()
	require.Len(t, msgs, 1)
	require.Equal(t, RunActor, msgs[0].Kind)
	require.True(t, tx.IsScheduled())
	require.Equal(t, producers*perProd, rx.Len())
}

func TestDispatch_two_producers_three_messages(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[seqMsg](0)

	var wg sync.WaitGroup
	send := func(p, n int) {
		defer wg.Done()
		for i := 0; i < n; i++ {
			assert.NoError(t, Dispatch(mailbox.Envelope[seqMsg]{Msg: seqMsg{p, i}}, tx, tk.ref, tk.pool))
		}
	}
	wg.Add(2)
	go send(0, 2)
	go send(1, 1)
	wg.Wait()

	require.Equal(t, 1, countKind(tk.received(), RunActor))

	last := map[int]int{0: -1, 1: -1}
	for i := 0; i < 3; i++ {
		env, err := rx.TryDequeue()
		require.NoError(t, err)
		require.Equal(t, last[env.Msg.producer]+1, env.Msg.seq)
		last[env.Msg.producer] = env.Msg.seq
	}
	require.Equal(t, 1, last[0])
	require.Equal(t, 0, last[1])

	_, err := rx.TryDequeue()
	require.ErrorIs(t, err, queue.ErrEmpty)
}

func TestDispatch_full_mailbox_has_no_side_effect(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[string](1)

	require.NoError(t, Dispatch(mailbox.Envelope[string]{Msg: "one"}, tx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))

	// pretend the run loop went idle without draining
	rx.SetScheduled(false)

	from := addr.NewURI("p", addr.NewPath("/user/p"), "local")
	err := Dispatch(mailbox.Envelope[string]{Sender: from, Msg: "two"}, tx, tk.ref, tk.pool)
	require.ErrorIs(t, err, queue.ErrFull)

	var dErr *DispatchError[string]
	require.True(t, errors.As(err, &dErr))
	require.Equal(t, "two", dErr.Msg.Msg)
	require.Same(t, from, dErr.Msg.Sender)

	require.False(t, tx.IsScheduled())
	require.Empty(t, tk.received())

	env, err := rx.TryDequeue()
	require.NoError(t, err)
	require.Equal(t, "one", env.Msg)
	require.NoError(t, Dispatch(mailbox.Envelope[string]{Msg: "three"}, tx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))
}

func TestDispatch_closed_mailbox(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[int](0)
	rx.Close()

	err := Dispatch(mailbox.Envelope[int]{Msg: 1}, tx, tk.ref, tk.pool)
	require.ErrorIs(t, err, queue.ErrClosed)
	require.False(t, tx.IsScheduled())
	require.Empty(t, tk.received())
}

// A message enqueued after the last dequeue but before the flag reset
// can't schedule; the run loop's recheck must.
func TestDispatch_no_lost_wakeup_before_reset(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[int](0)

	require.NoError(t, Dispatch(mailbox.Envelope[int]{Msg: 1}, tx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))

	// run loop drains
	_, err := rx.TryDequeue()
	require.NoError(t, err)

	// producer slips in while the flag is still set
	require.NoError(t, Dispatch(mailbox.Envelope[int]{Msg: 2}, tx, tk.ref, tk.pool))
	require.Empty(t, tk.received())

	require.True(t, settle(rx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))
	require.True(t, tx.IsScheduled())

	env, err := rx.TryDequeue()
	require.NoError(t, err)
	require.Equal(t, 2, env.Msg)
}

// A message enqueued after the flag reset schedules on its own; the
// recheck must not schedule a second time.
func TestDispatch_no_lost_wakeup_after_reset(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[int](0)

	require.NoError(t, Dispatch(mailbox.Envelope[int]{Msg: 1}, tx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))
	_, err := rx.TryDequeue()
	require.NoError(t, err)

	rx.SetScheduled(false)
	require.NoError(t, Dispatch(mailbox.Envelope[int]{Msg: 2}, tx, tk.ref, tk.pool))
	require.False(t, recheck(rx, tk.ref, tk.pool))

	require.Equal(t, 1, countKind(tk.received(), RunActor))
	require.True(t, tx.IsScheduled())
}

func TestDispatch_settle_idle(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[int](0)
	require.True(t, tx.TrySchedule())

	require.False(t, settle(rx, tk.ref, tk.pool))
	require.False(t, tx.IsScheduled())
	require.Empty(t, tk.received())
}

func TestDispatchAny(t *testing.T) {
	tk := newTestKernel(t, 16)
	tx, rx := mailbox.New[int](0)

	err := DispatchAny("not an int", nil, tx, tk.ref, tk.pool)
	require.ErrorIs(t, err, mailbox.ErrUnexpectedType)
	var dErr *DispatchError[any]
	require.ErrorAs(t, err, &dErr)
	require.Equal(t, "not an int", dErr.Msg.Msg)
	require.False(t, tx.IsScheduled())

	require.NoError(t, DispatchAny(1, nil, tx, tk.ref, tk.pool))
	require.NoError(t, DispatchAny(2, nil, tx, tk.ref, tk.pool))
	require.Equal(t, 1, countKind(tk.received(), RunActor))
	require.Equal(t, 2, rx.Len())
}
