package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"user_id,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Action         string    `json:"action"`
	Purpose        string    `json:"purpose,omitempty"`
	Decision       string    `json:"decision,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	ClientIPPrefix string    `json:"client_ip_prefix,omitempty"`
	Device         string    `json:"device,omitempty"`
}

type AuditEvent string

const (
	EventConsentRecorded     AuditEvent = "consent_recorded"
	EventConsentRevoked      AuditEvent = "consent_revoked"
	EventClientRegistered    AuditEvent = "client_registered"
	EventLoginSucceeded      AuditEvent = "login_succeeded"
	EventLoginFailed         AuditEvent = "login_failed"
	EventTokenRejected       AuditEvent = "token_rejected"
	EventVerificationDone    AuditEvent = "verification_completed"
	EventVerificationRefused AuditEvent = "verification_rejected"
	EventModelRecalibrated   AuditEvent = "model_recalibrated"
	EventImageDeleted        AuditEvent = "image_deleted"
)
