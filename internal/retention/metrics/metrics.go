package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the retention sweeper.
type Metrics struct {
	FilesDeleted prometheus.Counter
	FilesMissing prometheus.Counter
	SweepErrors  prometheus.Counter
	LastSweep    prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FilesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_retention_files_deleted_total",
			Help: "Total number of retained files removed after their retention period",
		}),
		FilesMissing: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_retention_files_missing_total",
			Help: "Scheduled files that were already gone when their deletion came due",
		}),
		SweepErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceguard_retention_sweep_errors_total",
			Help: "Total number of failed deletions",
		}),
		LastSweep: factory.NewGauge(prometheus.GaugeOpts{
			Name: "faceguard_retention_last_sweep_timestamp_seconds",
			Help: "Unix time of the last completed sweep",
		}),
	}
}
