package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/kernel-go/core/executor"
	"github.com/codewandler/kernel-go/core/metrics"
)

// executorMetrics implements executor.Metrics using Prometheus.
type executorMetrics struct {
	inflight      prometheus.Gauge
	taskDuration  prometheus.Histogram
	tasksTotal    *prometheus.CounterVec
	rejectedTotal prometheus.Counter
}

// NewExecutorMetrics creates a new Prometheus implementation of executor.Metrics.
func NewExecutorMetrics(reg prometheus.Registerer) executor.Metrics {
	m := &executorMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kernel_executor_inflight",
			Help: "Number of concurrently running tasks",
		}),

		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kernel_executor_task_duration_seconds",
			Help:    "Task duration in seconds",
			Buckets: defaultBuckets,
		}),

		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_executor_tasks_total",
			Help: "Total number of tasks completed",
		}, []string{"success"}),

		rejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kernel_executor_tasks_rejected_total",
			Help: "Total number of tasks refused or abandoned on shutdown",
		}),
	}

	reg.MustRegister(
		m.inflight,
		m.taskDuration,
		m.tasksTotal,
		m.rejectedTotal,
	)

	return m
}

func (m *executorMetrics) TasksInflight(count int) { m.inflight.Set(float64(count)) }

func (m *executorMetrics) TaskDuration() metrics.Timer { return newTimer(m.taskDuration) }

func (m *executorMetrics) TaskCompleted(success bool) {
	m.tasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

func (m *executorMetrics) TaskRejected() { m.rejectedTotal.Inc() }

var _ executor.Metrics = (*executorMetrics)(nil)
