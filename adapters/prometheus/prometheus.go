// Package prometheus provides Prometheus implementations of the kernel and
// executor metrics interfaces.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/kernel-go/core/metrics"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for latency metrics (in seconds). Sweeps and
// control sends are much faster than request handlers, hence the low end.
var defaultBuckets = []float64{
	.00001, .00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1,
}

// AllMetrics holds Prometheus implementations for the kernel and its executor.
type AllMetrics struct {
	Kernel   *kernelMetrics
	Executor *executorMetrics
}

// NewAllMetrics creates and registers all metrics on reg.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Kernel:   NewKernelMetrics(reg).(*kernelMetrics),
		Executor: NewExecutorMetrics(reg).(*executorMetrics),
	}
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
