package executor

import "github.com/codewandler/kernel-go/core/metrics"

// Metrics defines the metrics interface for the executor.
// All methods are thread-safe.
type Metrics interface {
	TasksInflight(count int)
	TaskDuration() metrics.Timer
	TaskCompleted(success bool)
	// TaskRejected counts spawns refused or abandoned on shutdown.
	TaskRejected()
}

type nopMetrics struct{}

func (nopMetrics) TasksInflight(int)           {}
func (nopMetrics) TaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) TaskCompleted(bool)          {}
func (nopMetrics) TaskRejected()               {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
