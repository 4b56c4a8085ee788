package models

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	dErrors "faceguard/pkg/domain-errors"
)

// Model card export formats.
const (
	CardFormatJSON = "json"
	CardFormatYAML = "yaml"
)

// ModelCard describes the deployed recognition model, the thresholds that
// gate it and, when attached, its live monitoring state.
type ModelCard struct {
	Model             string         `json:"model" yaml:"model"`
	Detector          string         `json:"detector" yaml:"detector"`
	IntendedUse       string         `json:"intended_use" yaml:"intended_use"`
	Limitations       []string       `json:"limitations" yaml:"limitations"`
	QualityThresholds CardQuality    `json:"quality_thresholds" yaml:"quality_thresholds"`
	Monitoring        CardMonitoring `json:"monitoring" yaml:"monitoring"`
	Status            *CardStatus    `json:"status,omitempty" yaml:"status,omitempty"`
}

type CardQuality struct {
	MinBrightness     float64 `json:"min_brightness" yaml:"min_brightness"`
	MinContrast       float64 `json:"min_contrast" yaml:"min_contrast"`
	MinResolution     int     `json:"min_resolution" yaml:"min_resolution"`
	MinFaceConfidence float64 `json:"min_face_confidence" yaml:"min_face_confidence"`
}

type CardMonitoring struct {
	DriftWindow     int     `json:"drift_window" yaml:"drift_window"`
	DriftThreshold  float64 `json:"drift_threshold" yaml:"drift_threshold"`
	WindowSize      int     `json:"window_size" yaml:"window_size"`
	CalibrationDays float64 `json:"calibration_days" yaml:"calibration_days"`
}

type CardStatus struct {
	DriftDetected      bool      `json:"drift_detected" yaml:"drift_detected"`
	DriftSignal        string    `json:"drift_signal,omitempty" yaml:"drift_signal,omitempty"`
	LastCalibration    time.Time `json:"last_calibration" yaml:"last_calibration"`
	CalibrationNeeded  bool      `json:"calibration_needed" yaml:"calibration_needed"`
	PerformanceSamples int       `json:"performance_samples" yaml:"performance_samples"`
}

// CardIntendedUse and CardLimitations are the fixed narrative sections of
// the card.
const CardIntendedUse = "One-to-one comparison of a reference photo against a live capture, " +
	"performed only after the subject's biometric consent is recorded."

func CardLimitations() []string {
	return []string{
		"Images failing the quality gate are rejected before comparison.",
		"Confidence is derived from embedding distance and the engine threshold and is not a calibrated probability.",
		"Drift is judged on mean confidence of recent comparisons only.",
	}
}

// WithStatus returns a copy of the card carrying status.
func (c ModelCard) WithStatus(s Status) ModelCard {
	c.Limitations = append([]string(nil), c.Limitations...)
	c.Status = &CardStatus{
		DriftDetected:      s.DriftDetected,
		DriftSignal:        s.DriftSignal,
		LastCalibration:    s.LastCalibration,
		CalibrationNeeded:  s.CalibrationNeeded,
		PerformanceSamples: s.PerformanceSamples,
	}
	return c
}

// Export renders the card as indented JSON (the default) or YAML.
func (c ModelCard) Export(format string) ([]byte, error) {
	switch format {
	case "", CardFormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case CardFormatYAML:
		return yaml.Marshal(c)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "format must be json or yaml")
	}
}
