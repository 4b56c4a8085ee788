// Package tracer provides a small tracing abstraction so services can emit
// spans without importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashUserID returns a short SHA-256 digest of a user id so traces can be
// correlated without carrying the raw identifier.
func HashUserID(userID string) string {
	if userID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(hash[:8])
}

// Span names emitted by the verification pipeline.
const (
	SpanVerify         = "verification.compare"
	SpanConsent        = "verification.consent"
	SpanQuality        = "verification.quality"
	SpanEngineVerify   = "verification.engine.verify"
	SpanEngineAnalyze  = "verification.engine.analyze"
	SpanRecord         = "verification.record"
	SpanRetainImages   = "verification.retain"
	SpanRetentionSweep = "retention.sweep"
)

// Attribute keys.
const (
	AttrUserHash    = "user.hash"
	AttrState       = "verification.state"
	AttrVerified    = "verification.verified"
	AttrConfidence  = "verification.confidence"
	AttrQualityPass = "quality.pass"
	AttrModel       = "engine.model"
	AttrDetector    = "engine.detector"
	AttrDeleted     = "retention.deleted"
)

// Event names.
const (
	EventStateChanged = "state.changed"
)
