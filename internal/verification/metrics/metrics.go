package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the comparison pipeline.
type Metrics struct {
	Comparisons        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	QualityFailures    *prometheus.CounterVec
	ComparisonDuration prometheus.Histogram
	EngineLatency      *prometheus.HistogramVec
	ImagesRetained     prometheus.Counter
}

// New registers pipeline collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Comparisons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_comparisons_total",
			Help: "Total number of comparisons by terminal state and match verdict",
		}, []string{"state", "match"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_comparison_rejections_total",
			Help: "Total number of rejected comparisons, labeled by reason",
		}, []string{"reason"}),
		QualityFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_quality_failures_total",
			Help: "Images that failed the quality gate, labeled by image role",
		}, []string{"image"}),
		ComparisonDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faceguard_comparison_duration_seconds",
			Help:    "End-to-end comparison duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		EngineLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faceguard_engine_request_duration_seconds",
			Help:    "Latency of verification engine calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		ImagesRetained: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_images_retained_total",
			Help: "Total number of images sealed for retention",
		}),
	}
}

func (m *Metrics) IncrementComparison(state string, match bool) {
	label := "false"
	if match {
		label = "true"
	}
	m.Comparisons.WithLabelValues(state, label).Inc()
}

func (m *Metrics) IncrementRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementQualityFailure(image string) {
	m.QualityFailures.WithLabelValues(image).Inc()
}

func (m *Metrics) ObserveComparisonDuration(seconds float64) {
	m.ComparisonDuration.Observe(seconds)
}

func (m *Metrics) ObserveEngineLatency(operation string, seconds float64) {
	m.EngineLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncrementImagesRetained(n int) {
	m.ImagesRetained.Add(float64(n))
}
