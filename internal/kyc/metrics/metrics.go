package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification pipeline.
type Metrics struct {
	// Verdicts by decision
	Verdicts *prometheus.CounterVec

	// Failed rules by rule name and severity
	RuleFailures *prometheus.CounterVec

	// Structural field errors by field and kind
	FieldErrors *prometheus.CounterVec

	// Single-document pipeline latency
	VerifyLatency prometheus.Histogram

	// Batch size distribution
	BatchSize prometheus.Histogram

	// Audit emissions that failed and were skipped
	AuditFailures prometheus.Counter
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_verdicts_total",
			Help: "Total verdicts issued by decision",
		}, []string{"decision"}), // decision: "accept", "reject", "review"

		RuleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_rule_failures_total",
			Help: "Total rule failures by rule and severity",
		}, []string{"rule", "severity"}),

		FieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_field_errors_total",
			Help: "Total structural field errors by field and kind",
		}, []string{"field", "kind"}),

		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kycgate_verify_duration_seconds",
			Help:    "Duration of a single document verification",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kycgate_batch_documents",
			Help:    "Number of documents per batch verification",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),

		AuditFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_audit_failures_total",
			Help: "Total verdict audit emissions that failed",
		}),
	}
}

// IncrementVerdict records an issued verdict.
func (m *Metrics) IncrementVerdict(decision string) {
	if m != nil {
		m.Verdicts.WithLabelValues(decision).Inc()
	}
}

// IncrementRuleFailure records a failed rule.
func (m *Metrics) IncrementRuleFailure(rule, severity string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(rule, severity).Inc()
	}
}

// IncrementFieldError records a structural field error.
func (m *Metrics) IncrementFieldError(field, kind string) {
	if m != nil {
		m.FieldErrors.WithLabelValues(field, kind).Inc()
	}
}

// ObserveVerifyLatency records the duration of one verification.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the size of a batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// IncrementAuditFailure records a failed audit emission.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
