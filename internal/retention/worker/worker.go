// Package worker removes retained files once their deletion date passes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"faceguard/internal/audit"
	"faceguard/internal/retention/metrics"
	"faceguard/internal/retention/models"
)

// DefaultInterval is how often Start sweeps when no interval is configured.
const DefaultInterval = time.Hour

// Schedule exposes the due entries and completion marking of the deletion
// schedule.
type Schedule interface {
	Due(ctx context.Context, now time.Time) ([]models.Entry, error)
	MarkDeleted(ctx context.Context, path string, at time.Time) (bool, error)
}

// Result summarizes one sweep.
type Result struct {
	Deleted int
	Missing int
	Failed  int
}

// Sweeper periodically deletes due files and marks them done.
type Sweeper struct {
	schedule Schedule
	interval time.Duration
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Sweeper)

// WithInterval overrides the sweep interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditor(p *audit.Publisher) Option {
	return func(s *Sweeper) {
		s.auditor = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func New(schedule Schedule, opts ...Option) (*Sweeper, error) {
	if schedule == nil {
		return nil, fmt.Errorf("schedule is required")
	}
	s := &Sweeper{
		schedule: schedule,
		interval: DefaultInterval,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Start sweeps periodically until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce removes every due file. A file that is already gone still counts
// as done. Failures are collected and returned together; the entries they
// belong to stay pending for the next sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	now := s.now()
	var res Result

	due, err := s.schedule.Due(ctx, now)
	if err != nil {
		return res, fmt.Errorf("load due entries: %w", err)
	}

	var errs []error
	for _, entry := range due {
		missing := false
		if err := os.Remove(entry.FilePath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				res.Failed++
				errs = append(errs, fmt.Errorf("remove %s: %w", entry.FilePath, err))
				continue
			}
			missing = true
		}
		if _, err := s.schedule.MarkDeleted(ctx, entry.FilePath, now); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("mark %s deleted: %w", entry.FilePath, err))
			continue
		}
		if missing {
			res.Missing++
		} else {
			res.Deleted++
		}
		s.emitAudit(ctx, entry)
	}

	s.record(res)
	if res.Deleted+res.Missing > 0 {
		s.logger.InfoContext(ctx, "retention sweep completed",
			"deleted", res.Deleted,
			"missing", res.Missing,
			"failed", res.Failed,
		)
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func (s *Sweeper) emitAudit(ctx context.Context, entry models.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		UserID:   entry.UserID,
		Action:   string(audit.EventImageDeleted),
		Decision: "deleted",
		Reason:   "retention_expired",
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", audit.EventImageDeleted,
			"error", err,
		)
	}
}

func (s *Sweeper) record(res Result) {
	if s.metrics == nil {
		return
	}
	s.metrics.FilesDeleted.Add(float64(res.Deleted))
	s.metrics.FilesMissing.Add(float64(res.Missing))
	s.metrics.SweepErrors.Add(float64(res.Failed))
	s.metrics.LastSweep.Set(float64(s.now().Unix()))
}
