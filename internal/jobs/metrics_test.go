package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	assert.NoError(t, m.Track("notify:send").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("notify:send").End(boom), boom)
	m.NotificationDelivered("room_allotted")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("notify:send", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("notify:send", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("notify:send")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("room_allotted")))
}

func TestNilMetricsTrackerIsNoop(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("x").End(boom), boom)
	m.NotificationDelivered("x")
}
