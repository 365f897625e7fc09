package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestSchedulerMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg)

	m.ObserveToolCall("book_appointment", "ok", 0.2)
	m.ObserveToolCall("book_appointment", "ok", 0.3)
	m.ObserveToolCall("book_appointment", "slot_taken", 0.1)
	m.ObserveCalendarCall("list_events", "ok", 0.05)

	assert.Equal(t, 2.0, counterValue(t, reg, "clinic_tools_calls_total", map[string]string{"tool": "book_appointment", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "clinic_tools_calls_total", map[string]string{"tool": "book_appointment", "outcome": "slot_taken"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "clinic_calendar_requests_total", map[string]string{"op": "list_events", "outcome": "ok"}))
}

func TestSchedulerMetricsDefaultRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		m := NewSchedulerMetrics(nil)
		m.ObserveToolCall("current_time_date", "ok", 0.001)
	})
}

func TestSchedulerMetricsNilSafe(t *testing.T) {
	var m *SchedulerMetrics
	m.ObserveToolCall("tool", "ok", 0.1)
	m.ObserveCalendarCall("op", "ok", 0.1)
}
