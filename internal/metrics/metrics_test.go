package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/gosuda/seguro/internal/metrics"
)

func TestObserveOperation(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	m.ObserveOperation("CREATE_POLICY", "success", time.Now())
	m.ObserveOperation("CREATE_POLICY", "success", time.Now())
	m.ObserveOperation("CREATE_POLICY", "partial_success", time.Now())

	assert.InDelta(t, 2, testutil.ToFloat64(m.Operations.WithLabelValues("CREATE_POLICY", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Operations.WithLabelValues("CREATE_POLICY", "partial_success")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestIncrementAuditDegraded(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	m.IncrementAuditDegraded("CANCEL_POLICY")

	assert.InDelta(t, 1, testutil.ToFloat64(m.AuditDegraded.WithLabelValues("CANCEL_POLICY")), 0)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("CREATE_CLIENT", "failure", time.Now())
		m.IncrementAuditDegraded("CREATE_CLIENT")
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		metrics.New(prometheus.NewRegistry())
		metrics.New(prometheus.NewRegistry())
	})
}
