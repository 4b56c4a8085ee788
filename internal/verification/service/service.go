package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ConsentRecorder QualityGate Engine Monitor ImageVault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"faceguard/internal/audit"
	consentModels "faceguard/internal/consent/models"
	"faceguard/internal/engine"
	monitoringModels "faceguard/internal/monitoring/models"
	"faceguard/internal/platform/tracer"
	"faceguard/internal/quality"
	"faceguard/internal/verification/metrics"
	"faceguard/internal/verification/models"
	dErrors "faceguard/pkg/domain-errors"
)

// ConsentRecorder upserts the consent that accompanies a comparison and
// queues retained files for deletion.
type ConsentRecorder interface {
	Record(ctx context.Context, req consentModels.RecordRequest) (*consentModels.Record, error)
	ScheduleDeletion(ctx context.Context, userID, path string) error
}

// QualityGate measures one image against the configured thresholds.
type QualityGate interface {
	Evaluate(ctx context.Context, image []byte) (quality.Metrics, bool, error)
}

// Engine is the external face verification engine.
type Engine interface {
	Verify(ctx context.Context, img1, img2 []byte) (engine.Verification, error)
	Analyze(ctx context.Context, img []byte) (engine.Analysis, error)
	Model() string
	Detector() string
}

// Monitor receives one sample per completed comparison.
type Monitor interface {
	Track(ctx context.Context, sample monitoringModels.Sample) error
}

// ImageVault seals submitted images at rest.
type ImageVault interface {
	Seal(ctx context.Context, userID, label string, data []byte) (string, error)
}

type Option func(*Service)

// Service runs the comparison pipeline:
// received, consent validated, quality checked, verified, recorded, completed.
// Any step may end in rejected instead.
type Service struct {
	consent ConsentRecorder
	gate    QualityGate
	engine  Engine
	monitor Monitor
	vault   ImageVault
	auditor *audit.Publisher
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(consent ConsentRecorder, gate QualityGate, eng Engine, monitor Monitor, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		consent: consent,
		gate:    gate,
		engine:  eng,
		monitor: monitor,
		auditor: auditor,
		logger:  logger,
		tracer:  tracer.NewNoop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithVault enables retention: both images are sealed and scheduled for
// deletion when the consent's retention period ends.
func WithVault(v ImageVault) Option {
	return func(s *Service) {
		s.vault = v
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// run carries the per-request state trail and root span.
type run struct {
	span  tracer.Span
	trail []models.State
}

func (r *run) enter(state models.State) {
	r.trail = append(r.trail, state)
	r.span.AddEvent(tracer.EventStateChanged, tracer.String(tracer.AttrState, string(state)))
}

// Compare runs one comparison to a terminal state. The returned outcome is
// never nil. A quality failure is a rejected outcome with a nil error; every
// other rejection also returns the error that caused it. Once the engine has
// been called the request runs to completion even if ctx is cancelled.
func (s *Service) Compare(ctx context.Context, req *models.Request) (*models.Outcome, error) {
	start := s.now()
	var userID string
	if req != nil {
		userID = req.UserID
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrUserHash, tracer.HashUserID(userID)),
	)
	r := &run{span: span}

	outcome, err := s.compare(ctx, r, req, start)
	outcome.Trail = r.trail

	span.SetAttributes(tracer.String(tracer.AttrState, string(outcome.State)))
	span.End(err)
	if s.metrics != nil {
		s.metrics.ObserveComparisonDuration(s.now().Sub(start).Seconds())
	}
	return outcome, err
}

func (s *Service) compare(ctx context.Context, r *run, req *models.Request, start time.Time) (*models.Outcome, error) {
	r.enter(models.StateReceived)
	if err := req.Validate(); err != nil {
		return s.reject(ctx, r, "", err)
	}

	record, err := s.recordConsent(ctx, req)
	if err != nil {
		return s.reject(ctx, r, req.UserID, err)
	}
	r.enter(models.StateConsentValidated)

	refMetrics, liveMetrics, failure, err := s.checkQuality(ctx, req)
	if err != nil {
		return s.reject(ctx, r, record.UserID, err)
	}
	if failure != nil {
		return s.rejectQuality(ctx, r, record.UserID, failure), nil
	}
	r.enter(models.StateQualityChecked)

	// The engine call is not abandoned when the caller goes away.
	detached := context.WithoutCancel(ctx)

	verdict, refAnalysis, liveAnalysis, err := s.verify(detached, req)
	if err != nil {
		return s.reject(ctx, r, record.UserID, err)
	}
	confidence := models.ConfidencePercent(verdict.Distance)
	threshold := models.ThresholdPercent(verdict.Threshold)
	ageDiff := models.Round2(math.Abs(refAnalysis.Age - liveAnalysis.Age))
	r.span.SetAttributes(
		tracer.Bool(tracer.AttrVerified, verdict.Verified),
		tracer.Float64(tracer.AttrConfidence, confidence),
		tracer.String(tracer.AttrModel, verdict.Model),
		tracer.String(tracer.AttrDetector, verdict.DetectorBackend),
	)
	r.enter(models.StateVerified)

	if s.vault != nil {
		if err := s.retainImages(detached, record.UserID, req); err != nil {
			return s.reject(ctx, r, record.UserID, err)
		}
	}

	processing := s.now().Sub(start).Seconds()
	result := &models.Result{
		VerificationResult: models.VerificationResult{
			Match:               verdict.Verified,
			Confidence:          confidence,
			Threshold:           threshold,
			ProcessingTime:      processing,
			DetailedExplanation: models.Explain(verdict.Verified, confidence, threshold, ageDiff),
		},
		Analysis: models.Analysis{
			ReferenceImage: imageAnalysis(refAnalysis, refMetrics),
			LiveImage:      imageAnalysis(liveAnalysis, liveMetrics),
		},
		TechnicalDetails: models.TechnicalDetails{
			Model:          verdict.Model,
			Detector:       verdict.DetectorBackend,
			DistanceMetric: verdict.DistanceMetric,
			RawDistance:    verdict.Distance,
		},
	}

	if err := s.track(detached, confidence, processing); err != nil {
		return s.reject(ctx, r, record.UserID, err)
	}
	r.enter(models.StateRecorded)

	r.enter(models.StateCompleted)
	if s.metrics != nil {
		s.metrics.IncrementComparison(string(models.StateCompleted), verdict.Verified)
	}
	decision := "no_match"
	if verdict.Verified {
		decision = "match"
	}
	s.emitAudit(ctx, audit.Event{
		UserID:   record.UserID,
		Action:   string(audit.EventVerificationDone),
		Purpose:  record.Purpose,
		Decision: decision,
		Reason:   fmt.Sprintf("confidence %.2f threshold %.2f", confidence, threshold),
	})
	s.logger.InfoContext(ctx, "comparison completed",
		"user_hash", tracer.HashUserID(record.UserID),
		"match", verdict.Verified,
		"confidence", confidence,
		"processing_time", processing,
	)
	return &models.Outcome{State: models.StateCompleted, Result: result}, nil
}

func (s *Service) recordConsent(ctx context.Context, req *models.Request) (*consentModels.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanConsent)
	record, err := s.consent.Record(ctx, req.ConsentRequest())
	span.End(err)
	if err != nil {
		return nil, withCode(err, dErrors.CodeStorage)
	}
	return record, nil
}

// checkQuality evaluates both images concurrently. A non-nil failure means at
// least one image missed a threshold.
func (s *Service) checkQuality(ctx context.Context, req *models.Request) (quality.Metrics, quality.Metrics, *models.QualityFailure, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanQuality)

	var refMetrics, liveMetrics quality.Metrics
	var refPass, livePass bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refMetrics, refPass, err = s.gate.Evaluate(gctx, req.ReferenceImage)
		return err
	})
	g.Go(func() error {
		var err error
		liveMetrics, livePass, err = s.gate.Evaluate(gctx, req.LiveImage)
		return err
	})
	if err := g.Wait(); err != nil {
		span.End(err)
		return quality.Metrics{}, quality.Metrics{}, nil, withCode(err, dErrors.CodeImageRead)
	}
	span.SetAttributes(tracer.Bool(tracer.AttrQualityPass, refPass && livePass))
	span.End(nil)

	if refPass && livePass {
		return refMetrics, liveMetrics, nil, nil
	}
	if !refPass {
		s.incrementQualityFailure(models.LabelReference)
	}
	if !livePass {
		s.incrementQualityFailure(models.LabelLive)
	}
	return refMetrics, liveMetrics, &models.QualityFailure{
		Message:        models.QualityFailureMessage,
		ReferencePass:  refPass,
		LivePass:       livePass,
		ReferenceImage: refMetrics,
		LiveImage:      liveMetrics,
	}, nil
}

// verify issues the engine calls concurrently: one comparison and one
// analysis per image. No call is retried.
func (s *Service) verify(ctx context.Context, req *models.Request) (engine.Verification, engine.Analysis, engine.Analysis, error) {
	var verdict engine.Verification
	var refAnalysis, liveAnalysis engine.Analysis

	var g errgroup.Group
	g.Go(func() error {
		return s.engineCall(ctx, tracer.SpanEngineVerify, "verify", func(ctx context.Context) error {
			var err error
			verdict, err = s.engine.Verify(ctx, req.ReferenceImage, req.LiveImage)
			return err
		})
	})
	g.Go(func() error {
		return s.engineCall(ctx, tracer.SpanEngineAnalyze, "analyze", func(ctx context.Context) error {
			var err error
			refAnalysis, err = s.engine.Analyze(ctx, req.ReferenceImage)
			return err
		})
	})
	g.Go(func() error {
		return s.engineCall(ctx, tracer.SpanEngineAnalyze, "analyze", func(ctx context.Context) error {
			var err error
			liveAnalysis, err = s.engine.Analyze(ctx, req.LiveImage)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return engine.Verification{}, engine.Analysis{}, engine.Analysis{}, withCode(err, dErrors.CodeEngine)
	}

	if verdict.Model == "" {
		verdict.Model = s.engine.Model()
	}
	if verdict.DetectorBackend == "" {
		verdict.DetectorBackend = s.engine.Detector()
	}
	if verdict.DistanceMetric == "" {
		verdict.DistanceMetric = engine.DefaultDistanceMetric
	}
	return verdict, refAnalysis, liveAnalysis, nil
}

func (s *Service) engineCall(ctx context.Context, spanName, operation string, call func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, spanName,
		tracer.String(tracer.AttrModel, s.engine.Model()),
		tracer.String(tracer.AttrDetector, s.engine.Detector()),
	)
	start := time.Now()
	err := call(ctx)
	if s.metrics != nil {
		s.metrics.ObserveEngineLatency(operation, time.Since(start).Seconds())
	}
	span.End(err)
	return err
}

// retainImages seals both images and schedules them for deletion.
func (s *Service) retainImages(ctx context.Context, userID string, req *models.Request) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRetainImages)
	defer func() { span.End(err) }()

	for _, img := range []struct {
		label string
		data  []byte
	}{
		{models.LabelReference, req.ReferenceImage},
		{models.LabelLive, req.LiveImage},
	} {
		path, err := s.vault.Seal(ctx, userID, img.label, img.data)
		if err != nil {
			return withCode(err, dErrors.CodeStorage)
		}
		if err := s.consent.ScheduleDeletion(ctx, userID, path); err != nil {
			return withCode(err, dErrors.CodeStorage)
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementImagesRetained(2)
	}
	return nil
}

func (s *Service) track(ctx context.Context, confidence, processing float64) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRecord)
	defer func() { span.End(err) }()

	err = s.monitor.Track(ctx, monitoringModels.Sample{
		Timestamp:      s.now(),
		Confidence:     confidence,
		ProcessingTime: processing,
	})
	if err != nil {
		return withCode(err, dErrors.CodeStorage)
	}
	return nil
}

func (s *Service) reject(ctx context.Context, r *run, userID string, err error) (*models.Outcome, error) {
	r.enter(models.StateRejected)
	reason := rejectionReason(err)
	if s.metrics != nil {
		s.metrics.IncrementRejection(reason)
		s.metrics.IncrementComparison(string(models.StateRejected), false)
	}
	level := slog.LevelWarn
	if reason == models.ReasonStorage || reason == models.ReasonInternal {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "comparison rejected",
		"user_hash", tracer.HashUserID(userID),
		"reason", reason,
		"error", err,
	)
	if userID != "" {
		s.emitAudit(ctx, audit.Event{
			UserID:   userID,
			Action:   string(audit.EventVerificationRefused),
			Decision: string(models.StateRejected),
			Reason:   reason,
		})
	}
	return &models.Outcome{State: models.StateRejected, Reason: err.Error()}, err
}

func (s *Service) rejectQuality(ctx context.Context, r *run, userID string, failure *models.QualityFailure) *models.Outcome {
	r.enter(models.StateRejected)
	if s.metrics != nil {
		s.metrics.IncrementRejection(models.ReasonQuality)
		s.metrics.IncrementComparison(string(models.StateRejected), false)
	}
	s.logger.InfoContext(ctx, "comparison rejected",
		"user_hash", tracer.HashUserID(userID),
		"reason", models.ReasonQuality,
		"reference_pass", failure.ReferencePass,
		"live_pass", failure.LivePass,
	)
	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   string(audit.EventVerificationRefused),
		Decision: string(models.StateRejected),
		Reason:   models.ReasonQuality,
	})
	return &models.Outcome{
		State:          models.StateRejected,
		QualityFailure: failure,
		Reason:         failure.Message,
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) incrementQualityFailure(image string) {
	if s.metrics != nil {
		s.metrics.IncrementQualityFailure(image)
	}
}

func imageAnalysis(a engine.Analysis, m quality.Metrics) models.ImageAnalysis {
	return models.ImageAnalysis{
		Age:     a.Age,
		Gender:  a.DominantGender,
		Emotion: a.DominantEmotion,
		Quality: m,
	}
}

// withCode keeps domain errors as they are and gives anything else code,
// preserving its message.
func withCode(err error, code dErrors.Code) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, code, err.Error())
}

func rejectionReason(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeImageRead:
		return models.ReasonValidation
	case dErrors.CodeEngine:
		return models.ReasonEngine
	case dErrors.CodeStorage, dErrors.CodeDecryption:
		return models.ReasonStorage
	default:
		return models.ReasonInternal
	}
}
