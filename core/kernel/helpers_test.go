package kernel

import (
	"sync/atomic"
	"testing"

	"github.com/codewandler/kernel-go/core/executor"
)

type testKernel struct {
	ref  *Ref
	ctrl chan Msg
	done chan struct{}
	pool *executor.Pool
}

func newTestKernel(t *testing.T, controlSize int) *testKernel {
	t.Helper()
	pool := executor.New(executor.Options{Context: t.Context()})
	t.Cleanup(pool.Close)

	ctrl := make(chan Msg, controlSize)
	done := make(chan struct{})
	return &testKernel{
		ref:  NewRef(ctrl, done, nil, nil),
		ctrl: ctrl,
		done: done,
		pool: pool,
	}
}

// received waits for all spawned sends and drains the control channel.
func (tk *testKernel) received() []Msg {
	tk.pool.Wait()
	var out []Msg
	for {
		select {
		case m := <-tk.ctrl:
			out = append(out, m)
		default:
			return out
		}
	}
}

func countKind(msgs []Msg, kind MsgKind) int {
	n := 0
	for _, m := range msgs {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// countingMetrics records the run loop counters.
type countingMetrics struct {
	nopMetrics
	processed   atomic.Int64
	deadLetters atomic.Int64
}

func (m *countingMetrics) MessagesProcessed(_ string, n int) { m.processed.Add(int64(n)) }
func (m *countingMetrics) DeadLetters(_ string, n int)       { m.deadLetters.Add(int64(n)) }
