package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the drift monitor.
type Metrics struct {
	SamplesTracked *prometheus.CounterVec
	Confidence     *prometheus.HistogramVec
	ProcessingTime *prometheus.HistogramVec
	TrailingMean   *prometheus.GaugeVec
	DriftDetected  *prometheus.GaugeVec
	Recalibrations *prometheus.CounterVec
	TrackFailures  *prometheus.CounterVec
}

// New registers monitor collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SamplesTracked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_monitor_samples_tracked_total",
			Help: "Total number of performance samples tracked, labeled by model",
		}, []string{"model"}),
		Confidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faceguard_monitor_confidence_percent",
			Help:    "Distribution of verification confidence on a 0-100 scale",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}, []string{"model"}),
		ProcessingTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faceguard_monitor_processing_time_seconds",
			Help:    "Processing time of tracked verifications in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"model"}),
		TrailingMean: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "faceguard_monitor_trailing_mean_confidence",
			Help: "Mean confidence of the trailing drift window",
		}, []string{"model"}),
		DriftDetected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "faceguard_monitor_drift_detected",
			Help: "1 when the last drift check signalled degradation, else 0",
		}, []string{"model"}),
		Recalibrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_monitor_recalibrations_total",
			Help: "Total number of recorded recalibrations",
		}, []string{"model"}),
		TrackFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceguard_monitor_track_failures_total",
			Help: "Total number of samples that could not be appended to the performance log",
		}, []string{"model"}),
	}
}

// ObserveSample records one tracked sample.
func (m *Metrics) ObserveSample(model string, confidence, processingSeconds float64) {
	m.SamplesTracked.WithLabelValues(model).Inc()
	m.Confidence.WithLabelValues(model).Observe(confidence)
	m.ProcessingTime.WithLabelValues(model).Observe(processingSeconds)
}

func (m *Metrics) SetTrailingMean(model string, mean float64) {
	m.TrailingMean.WithLabelValues(model).Set(mean)
}

func (m *Metrics) SetDriftDetected(model string, detected bool) {
	v := 0.0
	if detected {
		v = 1
	}
	m.DriftDetected.WithLabelValues(model).Set(v)
}

func (m *Metrics) IncrementRecalibrations(model string) {
	m.Recalibrations.WithLabelValues(model).Inc()
}

func (m *Metrics) IncrementTrackFailures(model string) {
	m.TrackFailures.WithLabelValues(model).Inc()
}
