package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/kernel-go/core/kernel"
	"github.com/codewandler/kernel-go/core/metrics"
)

// kernelMetrics implements kernel.Metrics using Prometheus.
type kernelMetrics struct {
	dispatchTotal    *prometheus.CounterVec
	controlTotal     *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	messagesTotal    *prometheus.CounterVec
	panicTotal       *prometheus.CounterVec
	mailboxDepth     *prometheus.GaugeVec
	deadLettersTotal *prometheus.CounterVec
}

// NewKernelMetrics creates a new Prometheus implementation of kernel.Metrics.
func NewKernelMetrics(reg prometheus.Registerer) kernel.Metrics {
	m := &kernelMetrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_dispatch_total",
			Help: "Total number of dispatch calls by outcome",
		}, []string{"outcome"}),

		controlTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_control_messages_total",
			Help: "Total number of control messages sent",
		}, []string{"kind", "delivered"}),

		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kernel_sweep_duration_seconds",
			Help:    "Mailbox sweep time in seconds",
			Buckets: defaultBuckets,
		}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_messages_processed_total",
			Help: "Total number of messages handled",
		}, []string{"actor_id"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_panics_total",
			Help: "Total number of recovered actor panics",
		}, []string{"actor_id"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kernel_mailbox_depth",
			Help: "Mailbox queue depth after the last sweep",
		}, []string{"actor_id"}),

		deadLettersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kernel_dead_letters_total",
			Help: "Total number of messages dropped on termination",
		}, []string{"actor_id"}),
	}

	reg.MustRegister(
		m.dispatchTotal,
		m.controlTotal,
		m.sweepDuration,
		m.messagesTotal,
		m.panicTotal,
		m.mailboxDepth,
		m.deadLettersTotal,
	)

	return m
}

func (m *kernelMetrics) Dispatched(outcome kernel.DispatchOutcome) {
	m.dispatchTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *kernelMetrics) ControlSent(kind kernel.MsgKind, delivered bool) {
	m.controlTotal.WithLabelValues(kind.String(), boolToStr(delivered)).Inc()
}

func (m *kernelMetrics) SweepDuration() metrics.Timer {
	return newTimer(m.sweepDuration)
}

func (m *kernelMetrics) MessagesProcessed(actorID string, n int) {
	if n > 0 {
		m.messagesTotal.WithLabelValues(actorID).Add(float64(n))
	}
}

func (m *kernelMetrics) MessagePanic(actorID string) {
	m.panicTotal.WithLabelValues(actorID).Inc()
}

func (m *kernelMetrics) MailboxDepth(actorID string, depth int) {
	m.mailboxDepth.WithLabelValues(actorID).Set(float64(depth))
}

func (m *kernelMetrics) DeadLetters(actorID string, n int) {
	m.deadLettersTotal.WithLabelValues(actorID).Add(float64(n))
}

var _ kernel.Metrics = (*kernelMetrics)(nil)
