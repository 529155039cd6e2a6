package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case module.
type Metrics struct {
	// Case operations by name and outcome (ok, conflict, invalid, error)
	Operations *prometheus.CounterVec

	// Lifecycle transitions by from/to state
	Transitions *prometheus.CounterVec

	// Documents generated, reused marks idempotent hits
	Documents *prometheus.CounterVec

	// Readiness score at each evaluation
	ReadinessScore prometheus.Histogram

	OperationLatency *prometheus.HistogramVec
}

// New registers the case metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "depositguard_case_operations_total",
			Help: "Case service operations by name and outcome",
		}, []string{"operation", "outcome"}),

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "depositguard_case_transitions_total",
			Help: "Case status transitions",
		}, []string{"from", "to"}),

		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "depositguard_documents_generated_total",
			Help: "Generated documents by type; reused=true when an existing document was returned",
		}, []string{"doc_type", "reused"}),

		ReadinessScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "depositguard_readiness_score",
			Help:    "Readiness score distribution",
			Buckets: []float64{0, 25, 50, 75, 90, 100},
		}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "depositguard_case_operation_duration_seconds",
			Help:    "Duration of case service operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveOperation(op, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(op, outcome).Inc()
		m.OperationLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementDocument(docType string, reused bool) {
	if m != nil {
		r := "false"
		if reused {
			r = "true"
		}
		m.Documents.WithLabelValues(docType, r).Inc()
	}
}

func (m *Metrics) ObserveReadiness(score int) {
	if m != nil {
		m.ReadinessScore.Observe(float64(score))
	}
}
