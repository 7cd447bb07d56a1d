package kernel

import "github.com/codewandler/kernel-go/core/metrics"

// DispatchOutcome labels the result of a Dispatch call.
type DispatchOutcome string

const (
	// DispatchScheduled means the send moved the mailbox from idle to scheduled.
	DispatchScheduled DispatchOutcome = "scheduled"
	// DispatchCoalesced means a run was already pending.
	DispatchCoalesced DispatchOutcome = "coalesced"
	// DispatchRejected means the enqueue failed.
	DispatchRejected DispatchOutcome = "rejected"
)

// Metrics defines the metrics interface for the kernel.
// All methods are thread-safe.
type Metrics interface {
	// Dispatch
	Dispatched(outcome DispatchOutcome)

	// Control channel
	ControlSent(kind MsgKind, delivered bool)

	// Run loop
	SweepDuration() metrics.Timer
	MessagesProcessed(actorID string, n int)
	MessagePanic(actorID string)
	MailboxDepth(actorID string, depth int)
	DeadLetters(actorID string, n int)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) Dispatched(DispatchOutcome) {}

func (nopMetrics) ControlSent(MsgKind, bool) {}

func (nopMetrics) SweepDuration() metrics.Timer  { return metrics.NopTimer() }
func (nopMetrics) MessagesProcessed(string, int) {}
func (nopMetrics) MessagePanic(string)           {}
func (nopMetrics) MailboxDepth(string, int)      {}
func (nopMetrics) DeadLetters(string, int)       {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
