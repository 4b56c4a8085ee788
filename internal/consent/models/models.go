package models

import (
	"time"

	dErrors "faceguard/pkg/domain-errors"
)

// Defaults applied when a consent submission omits the optional fields.
const DefaultPurpose = "identity_verification"

func DefaultDataTypes() []string {
	return []string{"facial_images", "facial_features"}
}

// Audit event decisions and reasons.
const (
	AuditDecisionGranted = "granted"
	AuditDecisionRevoked = "revoked"

	AuditReasonUserSubmitted = "user_submitted"
	AuditReasonOperator      = "operator_initiated"
)

// Record is a user's consent to biometric processing. There is at most one
// record per UserID; re-submission overwrites it in place and revocation
// only flips Revoked.
type Record struct {
	UserID          string    `json:"user_id"`
	ConsentDate     time.Time `json:"consent_date"`
	Purpose         string    `json:"purpose"`
	RetentionPeriod int       `json:"retention_period"`
	DataTypes       []string  `json:"data_types"`
	Revoked         bool      `json:"revoked"`
}

// NewRecord creates a Record with domain invariant checks.
func NewRecord(userID, purpose string, retentionDays int, dataTypes []string, consentDate time.Time) (*Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: user_id")
	}
	if retentionDays <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "retention_period must be a positive number of days")
	}
	if purpose == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "purpose cannot be empty")
	}
	if consentDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "consent date required")
	}
	return &Record{
		UserID:          userID,
		ConsentDate:     consentDate,
		Purpose:         purpose,
		RetentionPeriod: retentionDays,
		DataTypes:       append([]string(nil), dataTypes...),
	}, nil
}

// RetainUntil is the instant after which data collected under this consent
// must be deleted.
func (r Record) RetainUntil() time.Time {
	return r.ConsentDate.AddDate(0, 0, r.RetentionPeriod)
}
