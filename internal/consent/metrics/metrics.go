package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	ConsentsRecorded      *prometheus.CounterVec
	ConsentsRevoked       prometheus.Counter
	DefaultsApplied       *prometheus.CounterVec
	StoreOperationLatency *prometheus.HistogramVec
}

// New registers consent collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConsentsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_consents_recorded_total",
			Help: "Total number of consent submissions recorded, labeled by purpose",
		}, []string{"purpose"}),
		ConsentsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_consents_revoked_total",
			Help: "Total number of consents revoked",
		}),
		DefaultsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_consent_defaults_applied_total",
			Help: "Consent submissions where an optional field was defaulted, labeled by field",
		}, []string{"field"}),
		StoreOperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faceguard_consent_store_operation_latency_seconds",
			Help:    "Latency of consent ledger operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementConsentsRecorded(purpose string) {
	m.ConsentsRecorded.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementConsentsRevoked() {
	m.ConsentsRevoked.Inc()
}

func (m *Metrics) IncrementDefaultsApplied(field string) {
	m.DefaultsApplied.WithLabelValues(field).Inc()
}

// ObserveStoreOperationLatency records the latency of a ledger operation.
func (m *Metrics) ObserveStoreOperationLatency(operation string, durationSeconds float64) {
	m.StoreOperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}
