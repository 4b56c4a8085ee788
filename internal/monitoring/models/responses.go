package models

import "time"

// PerformanceResponse is returned by GET /monitoring/performance.
// DriftStatus is null when no drift is detected.
type PerformanceResponse struct {
	Logs              []Sample `json:"logs"`
	DriftStatus       *string  `json:"drift_status"`
	CalibrationNeeded bool     `json:"calibration_needed"`
}

// CalibrateResponse is returned by POST /monitoring/calibrate.
type CalibrateResponse struct {
	Model           string    `json:"model"`
	LastCalibration time.Time `json:"last_calibration"`
}

// ModelStatus is the model section of GET /system/health.
type ModelStatus struct {
	DriftDetected      bool      `json:"drift_detected"`
	LastCalibration    time.Time `json:"last_calibration"`
	PerformanceSamples int       `json:"performance_samples"`
}

// StorageStatus is the storage section of GET /system/health.
type StorageStatus struct {
	ConsentRecords int  `json:"consent_records"`
	MonitoringData bool `json:"monitoring_data"`
}

// SystemHealthResponse is returned by GET /system/health.
type SystemHealthResponse struct {
	Status      string        `json:"status"`
	ModelStatus ModelStatus   `json:"model_status"`
	Storage     StorageStatus `json:"storage"`
}
