package models

import (
	consentModels "faceguard/internal/consent/models"
	"faceguard/internal/quality"
	dErrors "faceguard/pkg/domain-errors"
)

// State is a step of the comparison pipeline.
type State string

const (
	StateReceived         State = "received"
	StateConsentValidated State = "consent_validated"
	StateQualityChecked   State = "quality_checked"
	StateVerified         State = "verified"
	StateRecorded         State = "recorded"
	StateCompleted        State = "completed"
	StateRejected         State = "rejected"
)

// Rejection reasons used for metrics and audit.
const (
	ReasonValidation = "validation"
	ReasonQuality    = "quality"
	ReasonEngine     = "engine"
	ReasonStorage    = "storage"
	ReasonInternal   = "internal"
)

// QualityFailureMessage is reported when either image misses a threshold.
const QualityFailureMessage = "Image quality requirements not met"

// Image labels used when images are retained.
const (
	LabelReference = "reference"
	LabelLive      = "live"
)

// Request is one comparison: two images plus the consent fields that
// accompany them.
type Request struct {
	UserID          string
	RetentionPeriod int
	Purpose         string
	DataTypes       []string
	ReferenceImage  []byte
	LiveImage       []byte
}

// ConsentRequest derives the consent submission carried by the request.
func (r *Request) ConsentRequest() consentModels.RecordRequest {
	return consentModels.RecordRequest{
		UserID:          r.UserID,
		Purpose:         r.Purpose,
		RetentionPeriod: r.RetentionPeriod,
		DataTypes:       append([]string(nil), r.DataTypes...),
	}
}

// Validate checks that both images are present and the consent fields are
// well formed. Nothing is written when it fails.
func (r *Request) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.ReferenceImage) == 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required field: reference_image")
	}
	if len(r.LiveImage) == 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required field: live_image")
	}
	consent := r.ConsentRequest()
	consent.Normalize()
	return consent.Validate()
}

// VerificationResult is the normalized engine verdict.
type VerificationResult struct {
	Match               bool    `json:"match"`
	Confidence          float64 `json:"confidence"`
	Threshold           float64 `json:"threshold"`
	ProcessingTime      float64 `json:"processing_time"`
	DetailedExplanation string  `json:"detailed_explanation"`
}

// ImageAnalysis describes one submitted image.
type ImageAnalysis struct {
	Age     float64         `json:"age"`
	Gender  string          `json:"gender"`
	Emotion string          `json:"emotion"`
	Quality quality.Metrics `json:"quality"`
}

type Analysis struct {
	ReferenceImage ImageAnalysis `json:"reference_image"`
	LiveImage      ImageAnalysis `json:"live_image"`
}

type TechnicalDetails struct {
	Model          string  `json:"model"`
	Detector       string  `json:"detector"`
	DistanceMetric string  `json:"distance_metric"`
	RawDistance    float64 `json:"raw_distance"`
}

// Result is returned for a completed comparison.
type Result struct {
	VerificationResult VerificationResult `json:"verification_result"`
	Analysis           Analysis           `json:"analysis"`
	TechnicalDetails   TechnicalDetails   `json:"technical_details"`
}

// QualityFailure reports the metrics of both images when either fails the
// quality gate. It is a normal outcome, not an error.
type QualityFailure struct {
	Message        string          `json:"message"`
	ReferencePass  bool            `json:"reference_pass"`
	LivePass       bool            `json:"live_pass"`
	ReferenceImage quality.Metrics `json:"reference_image"`
	LiveImage      quality.Metrics `json:"live_image"`
}

// Outcome is the terminal state of a comparison. Trail lists every state the
// request passed through, in order.
type Outcome struct {
	State          State           `json:"state"`
	Result         *Result         `json:"result,omitempty"`
	QualityFailure *QualityFailure `json:"quality_failure,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Trail          []State         `json:"-"`
}
