package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks orchestrated mutations: how each one ended, how long it
// took and how often the secondary audit write degraded.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations    *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	AuditDegraded *prometheus.CounterVec
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seguro_operations_total",
			Help: "Mutating operations by name and outcome (success, partial_success, failure)",
		}, []string{"operation", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seguro_operation_duration_seconds",
			Help:    "Duration of mutating operations including the secondary audit write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		AuditDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seguro_audit_degraded_total",
			Help: "Committed mutations whose secondary audit write failed",
		}, []string{"operation"}),
	}
}

// ObserveOperation records one finished operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// IncrementAuditDegraded records a failed secondary audit write.
func (m *Metrics) IncrementAuditDegraded(op string) {
	if m == nil {
		return
	}
	m.AuditDegraded.WithLabelValues(op).Inc()
}
