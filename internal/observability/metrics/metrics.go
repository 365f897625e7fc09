package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulerMetrics exposes counters/histograms for tool calls and calendar
// round trips.
type SchedulerMetrics struct {
	toolCalls       *prometheus.CounterVec
	toolLatency     *prometheus.HistogramVec
	calendarCalls   *prometheus.CounterVec
	calendarLatency *prometheus.HistogramVec
}

func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total tool invocations by outcome",
		}, []string{"tool", "outcome"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "tools",
			Name:      "latency_seconds",
			Help:      "Latency of tool invocations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		calendarCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "calendar",
			Name:      "requests_total",
			Help:      "Total calendar store requests by operation and outcome",
		}, []string{"op", "outcome"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "calendar",
			Name:      "latency_seconds",
			Help:      "Latency of calendar store requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.toolCalls, m.toolLatency, m.calendarCalls, m.calendarLatency)
	return m
}

// ObserveToolCall records one tool invocation. outcome is "ok" or an error kind.
func (m *SchedulerMetrics) ObserveToolCall(tool, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(seconds)
}

// ObserveCalendarCall records one calendar store request.
func (m *SchedulerMetrics) ObserveCalendarCall(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.calendarCalls.WithLabelValues(op, outcome).Inc()
	m.calendarLatency.WithLabelValues(op).Observe(seconds)
}
