package models

import "time"

const (
	// DriftWindow is the number of trailing samples the drift check averages.
	DriftWindow = 10
	// DriftThreshold is the mean confidence (0-100) below which drift is signalled.
	DriftThreshold = 50.0
	// MinWindowSize is the smallest in-memory window that can still answer
	// the drift check.
	MinWindowSize = DriftWindow
	// DefaultWindowSize is the in-memory window capacity when none is configured.
	DefaultWindowSize = 100
	// DefaultCalibrationInterval is how long a calibration stays fresh.
	DefaultCalibrationInterval = 7 * 24 * time.Hour

	// SignalDegradation is the drift signal raised for low trailing confidence.
	SignalDegradation = "Performance degradation detected"
)

// Sample is one verification outcome as seen by the drift monitor.
type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	Confidence     float64   `json:"confidence"`
	ProcessingTime float64   `json:"processing_time"`
}

// Calibration is the persisted calibration state for one model.
type Calibration struct {
	Model           string    `json:"model"`
	LastCalibration time.Time `json:"last_calibration"`
}

// Status summarizes the monitor for health reporting.
type Status struct {
	Model              string    `json:"model"`
	DriftDetected      bool      `json:"drift_detected"`
	DriftSignal        string    `json:"drift_signal,omitempty"`
	LastCalibration    time.Time `json:"last_calibration"`
	CalibrationNeeded  bool      `json:"calibration_needed"`
	PerformanceSamples int       `json:"performance_samples"`
	WindowCapacity     int       `json:"window_capacity"`
}

// MeanConfidence averages the confidence of samples. An empty slice yields 0.
func MeanConfidence(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Confidence
	}
	return sum / float64(len(samples))
}
