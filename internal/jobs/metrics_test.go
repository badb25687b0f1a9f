package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("sessions:prune").End(nil))
	failure := errors.New("boom")
	assert.ErrorIs(t, m.Track("sessions:prune").End(failure), failure)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:prune", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("sessions:prune", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("sessions:prune")))
}

func TestAddPrunedIgnoresEmptySweeps(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AddPruned("audit", 0)
	m.AddPruned("audit", 3)
	m.AddPruned("memory", 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.pruned.WithLabelValues("audit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pruned.WithLabelValues("memory")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddPruned("audit", 1)
	assert.NoError(t, m.Track("x").End(nil))
}
