package state

import (
	"github.com/notuslabs/notus-aa/helper/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics represents the executor metrics
type Metrics struct {
	// Operations that passed validation and sponsorship
	appliedOperations prometheus.Counter
	// Operations rejected before execution, by failure kind
	rejectedOperations *prometheus.CounterVec
	// Operations whose execution reverted
	revertedOperations prometheus.Counter
	// Fees advanced by paymasters, in native units
	sponsoredFees prometheus.Counter
	// Time spent applying an operation
	applyDuration prometheus.Histogram
}

func (m *Metrics) Register() {
	if m.appliedOperations != nil {
		prometheus.MustRegister(m.appliedOperations)
	}

	if m.rejectedOperations != nil {
		prometheus.MustRegister(m.rejectedOperations)
	}

	if m.revertedOperations != nil {
		prometheus.MustRegister(m.revertedOperations)
	}

	if m.sponsoredFees != nil {
		prometheus.MustRegister(m.sponsoredFees)
	}

	if m.applyDuration != nil {
		prometheus.MustRegister(m.applyDuration)
	}
}

func (m *Metrics) AppliedInc() {
	metrics.CounterInc(m.appliedOperations)
}

func (m *Metrics) RejectedInc(kind FailureKind) {
	if m.rejectedOperations == nil {
		return
	}

	m.rejectedOperations.With(prometheus.Labels{"kind": string(kind)}).Inc()
}

func (m *Metrics) RevertedInc() {
	metrics.CounterInc(m.revertedOperations)
}

func (m *Metrics) AddSponsoredFee(v float64) {
	metrics.AddCounter(m.sponsoredFees, v)
}

func (m *Metrics) ApplyDurationObserve(seconds float64) {
	metrics.HistogramObserve(m.applyDuration, seconds)
}

// GetPrometheusMetrics return the executor metrics instance
func GetPrometheusMetrics(namespace string, labelsWithValues ...string) *Metrics {
	constLabels := metrics.ParseLabels(labelsWithValues...)

	return &Metrics{
		appliedOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        "applied_operations",
			Help:        "Operations that reached execution",
			ConstLabels: constLabels,
		}),
		rejectedOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        "rejected_operations",
			Help:        "Operations rejected before execution",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		revertedOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        "reverted_operations",
			Help:        "Operations whose batch reverted",
			ConstLabels: constLabels,
		}),
		sponsoredFees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        "sponsored_fees",
			Help:        "Native fees advanced by paymasters",
			ConstLabels: constLabels,
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "executor",
			Name:        "apply_duration_seconds",
			Help:        "Time spent applying one operation",
			ConstLabels: constLabels,
		}),
	}
}

// NilMetrics will return the non operational executor metrics
func NilMetrics() *Metrics {
	return &Metrics{}
}
