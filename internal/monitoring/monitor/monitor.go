// Package monitor tracks verification confidence over time and reports drift
// and calibration staleness for one recognition model.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"faceguard/internal/audit"
	"faceguard/internal/monitoring/metrics"
	"faceguard/internal/monitoring/models"
	"faceguard/internal/platform/filestore"
	dErrors "faceguard/pkg/domain-errors"
)

// Error Contract:
// - Track and Recalibrate failures against the files are StorageError
// - DetectDrift and CheckCalibration never fail

// Monitor keeps an append-only performance log plus a bounded in-memory
// window of the most recent samples.
type Monitor struct {
	model    string
	log      *filestore.Log[models.Sample]
	calib    *filestore.Document[models.Calibration]
	interval time.Duration
	capacity int

	mu              sync.Mutex
	window          []models.Sample
	lastCalibration time.Time

	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Monitor)

// WithWindowSize sets the in-memory window capacity. Values below
// models.MinWindowSize are raised to it.
func WithWindowSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.capacity = n
		}
	}
}

func WithCalibrationInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

func WithAuditor(p *audit.Publisher) Option {
	return func(m *Monitor) {
		m.auditor = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// PerformanceLogPath returns <dir>/<model>_performance.jsonl.
func PerformanceLogPath(dir, model string) string {
	return filepath.Join(dir, model+"_performance.jsonl")
}

// CalibrationPath returns <dir>/<model>_calibration.json.
func CalibrationPath(dir, model string) string {
	return filepath.Join(dir, model+"_calibration.json")
}

// New opens the monitor for model under dir. The window is filled from the
// tail of an existing performance log. When no calibration has ever been
// recorded, construction time is persisted as the first calibration.
func New(dir, model string, opts ...Option) (*Monitor, error) {
	if model == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "model name is required")
	}
	m := &Monitor{
		model:    model,
		log:      filestore.NewLog[models.Sample](PerformanceLogPath(dir, model)),
		interval: models.DefaultCalibrationInterval,
		capacity: models.DefaultWindowSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.capacity < models.MinWindowSize {
		m.capacity = models.MinWindowSize
	}
	m.calib = filestore.NewDocument(CalibrationPath(dir, model), func() models.Calibration {
		return models.Calibration{Model: model}
	})

	tail, err := m.log.Tail(m.capacity)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read performance log")
	}
	m.window = make([]models.Sample, 0, m.capacity)
	m.window = append(m.window, tail...)

	startedAt := m.now()
	err = m.calib.Update(func(c *models.Calibration) (bool, error) {
		if !c.LastCalibration.IsZero() {
			m.lastCalibration = c.LastCalibration
			return false, nil
		}
		c.Model = model
		c.LastCalibration = startedAt
		m.lastCalibration = startedAt
		return true, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load calibration state")
	}

	m.publishWindow()
	return m, nil
}

// Model returns the monitored model name.
func (m *Monitor) Model() string {
	return m.model
}

// Track appends sample to the durable log, then to the window. A sample that
// cannot be persisted is not added to the window either.
func (m *Monitor) Track(ctx context.Context, sample models.Sample) error {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = m.now()
	}

	// The window must keep the log's order, so both writes share one lock.
	m.mu.Lock()
	if err := m.log.Append(sample); err != nil {
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.IncrementTrackFailures(m.model)
		}
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to append performance sample")
	}
	if len(m.window) == m.capacity {
		copy(m.window, m.window[1:])
		m.window = m.window[:m.capacity-1]
	}
	m.window = append(m.window, sample)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ObserveSample(m.model, sample.Confidence, sample.ProcessingTime)
	}
	signal, drifted := m.publishWindow()
	if drifted && m.logger != nil {
		m.logger.WarnContext(ctx, "model drift detected",
			"model", m.model,
			"signal", signal,
		)
	}
	return nil
}

// DetectDrift reports a degradation signal when the mean confidence of the
// last models.DriftWindow samples is below models.DriftThreshold. Fewer
// samples than that yields no signal.
func (m *Monitor) DetectDrift() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return detect(m.window)
}

func detect(window []models.Sample) (string, bool) {
	if len(window) < models.DriftWindow {
		return "", false
	}
	recent := window[len(window)-models.DriftWindow:]
	if models.MeanConfidence(recent) < models.DriftThreshold {
		return models.SignalDegradation, true
	}
	return "", false
}

// CheckCalibration reports whether more than the calibration interval has
// passed between the last calibration and now.
func (m *Monitor) CheckCalibration(now time.Time) bool {
	return now.Sub(m.LastCalibration()) > m.interval
}

// LastCalibration returns the persisted calibration timestamp, so a
// recalibration written by another process is seen without a restart. The
// last value read is used when the file cannot be read.
func (m *Monitor) LastCalibration() time.Time {
	c, err := m.calib.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("failed to read calibration state",
				"model", m.model,
				"error", err,
			)
		}
		return m.lastCalibration
	}
	if !c.LastCalibration.IsZero() {
		m.lastCalibration = c.LastCalibration
	}
	return m.lastCalibration
}

// Recalibrate records an external recalibration at the given time.
func (m *Monitor) Recalibrate(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		at = m.now()
	}
	err := m.calib.Update(func(c *models.Calibration) (bool, error) {
		c.Model = m.model
		c.LastCalibration = at
		return true, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist calibration")
	}

	m.mu.Lock()
	m.lastCalibration = at
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncrementRecalibrations(m.model)
	}
	if m.auditor != nil {
		if err := m.auditor.Emit(ctx, audit.Event{
			Action:   string(audit.EventModelRecalibrated),
			Purpose:  m.model,
			Decision: "recalibrated",
			Reason:   at.UTC().Format(time.RFC3339),
		}); err != nil && m.logger != nil {
			m.logger.WarnContext(ctx, "failed to emit audit event",
				"action", audit.EventModelRecalibrated,
				"error", err,
			)
		}
	}
	if m.logger != nil {
		m.logger.InfoContext(ctx, "model recalibrated",
			"model", m.model,
			"at", at,
		)
	}
	return nil
}

// Samples returns every sample in the durable log, oldest first.
func (m *Monitor) Samples(_ context.Context) ([]models.Sample, error) {
	samples, err := m.log.ReadAll()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read performance log")
	}
	return samples, nil
}

// HasData reports whether a performance log exists on disk.
func (m *Monitor) HasData() bool {
	_, err := os.Stat(m.log.Path())
	return err == nil
}

// Status summarizes drift and calibration state.
func (m *Monitor) Status() models.Status {
	last := m.LastCalibration()

	m.mu.Lock()
	defer m.mu.Unlock()
	signal, drifted := detect(m.window)
	return models.Status{
		Model:              m.model,
		DriftDetected:      drifted,
		DriftSignal:        signal,
		LastCalibration:    last,
		CalibrationNeeded:  m.now().Sub(last) > m.interval,
		PerformanceSamples: len(m.window),
		WindowCapacity:     m.capacity,
	}
}

func (m *Monitor) publishWindow() (string, bool) {
	m.mu.Lock()
	signal, drifted := detect(m.window)
	n := min(len(m.window), models.DriftWindow)
	mean := models.MeanConfidence(m.window[len(m.window)-n:])
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetTrailingMean(m.model, mean)
		m.metrics.SetDriftDetected(m.model, drifted)
	}
	return signal, drifted
}
