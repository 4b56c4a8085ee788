package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"faceguard/internal/audit"
	"faceguard/internal/consent/metrics"
	"faceguard/internal/consent/models"
	"faceguard/internal/platform/privacy"
	"faceguard/internal/sentinel"
	dErrors "faceguard/pkg/domain-errors"
)

// Store is the consent ledger.
// Error Contract:
// - GetUserConsent returns sentinel.ErrNotFound when no record exists
// - read/write failures are StorageError
type Store interface {
	RecordConsent(ctx context.Context, record models.Record) error
	GetAllConsents(ctx context.Context) ([]models.Record, error)
	GetUserConsent(ctx context.Context, userID string) (*models.Record, error)
	RevokeConsent(ctx context.Context, userID string) (bool, error)
	ScheduleDeletion(ctx context.Context, userID, path string) error
}

type Option func(*Service)

// Service records and revokes consent on top of the ledger.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Record normalizes and validates req, then upserts the user's consent.
// Validation failures never reach the ledger.
func (s *Service) Record(ctx context.Context, req models.RecordRequest) (*models.Record, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, err := models.NewRecord(req.UserID, req.Purpose, req.RetentionPeriod, req.DataTypes, s.now())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.store.RecordConsent(ctx, *record)
	s.observeStoreLatency("record", start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to record consent")
	}

	for _, field := range req.DefaultsApplied {
		s.incrementDefaultsApplied(field)
	}
	if len(req.DefaultsApplied) > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "consent defaults applied",
			"user_id", privacy.ConsentLogUserID(record.UserID),
			"fields", req.DefaultsApplied,
		)
	}
	s.emitAudit(ctx, audit.Event{
		UserID:   record.UserID,
		Action:   string(audit.EventConsentRecorded),
		Purpose:  record.Purpose,
		Decision: models.AuditDecisionGranted,
		Reason:   models.AuditReasonUserSubmitted,
	})
	s.incrementConsentsRecorded(record.Purpose)
	return record, nil
}

// Get returns the user's consent record.
func (s *Service) Get(ctx context.Context, userID string) (*models.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: user_id")
	}
	record, err := s.store.GetUserConsent(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no consent on record for user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read consent")
	}
	return record, nil
}

// Revoke marks the user's consent revoked and reports whether a record
// existed. The record is kept for audit.
func (s *Service) Revoke(ctx context.Context, userID string) (*models.RevokeResponse, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: user_id")
	}

	start := time.Now()
	found, err := s.store.RevokeConsent(ctx, userID)
	s.observeStoreLatency("revoke", start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to revoke consent")
	}

	if !found {
		return &models.RevokeResponse{
			UserID:  userID,
			Revoked: false,
			Message: "No consent on record for user",
		}, nil
	}

	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   string(audit.EventConsentRevoked),
		Decision: models.AuditDecisionRevoked,
		Reason:   models.AuditReasonOperator,
	})
	s.incrementConsentsRevoked()
	return &models.RevokeResponse{
		UserID:  userID,
		Revoked: true,
		Message: "Consent revoked",
	}, nil
}

// List returns every record with user ids namespaced for the public log.
func (s *Service) List(ctx context.Context) (*models.LogsResponse, error) {
	start := time.Now()
	records, err := s.store.GetAllConsents(ctx)
	s.observeStoreLatency("list", start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list consents")
	}

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		r.UserID = privacy.ConsentLogUserID(r.UserID)
		out = append(out, r)
	}
	return &models.LogsResponse{Records: out}, nil
}

// Count returns the number of consent records on file.
func (s *Service) Count(ctx context.Context) (int, error) {
	records, err := s.store.GetAllConsents(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list consents")
	}
	return len(records), nil
}

// ScheduleDeletion queues path for removal once the user's retention period
// has passed.
func (s *Service) ScheduleDeletion(ctx context.Context, userID, path string) error {
	if err := s.store.ScheduleDeletion(ctx, userID, path); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to schedule deletion")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) incrementConsentsRecorded(purpose string) {
	if s.metrics != nil {
		s.metrics.IncrementConsentsRecorded(purpose)
	}
}

func (s *Service) incrementConsentsRevoked() {
	if s.metrics != nil {
		s.metrics.IncrementConsentsRevoked()
	}
}

func (s *Service) incrementDefaultsApplied(field string) {
	if s.metrics != nil {
		s.metrics.IncrementDefaultsApplied(field)
	}
}

func (s *Service) observeStoreLatency(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperationLatency(operation, time.Since(start).Seconds())
	}
}
