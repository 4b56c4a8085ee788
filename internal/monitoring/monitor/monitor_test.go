package monitor

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"faceguard/internal/audit"
	"faceguard/internal/monitoring/metrics"
	"faceguard/internal/monitoring/models"
	dErrors "faceguard/pkg/domain-errors"
	pkgtestutil "faceguard/pkg/testutil"
)

const testModel = "Facenet512"

type MonitorSuite struct {
	suite.Suite
	dir     string
	now     time.Time
	metrics *metrics.Metrics
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *MonitorSuite) clock() time.Time {
	return s.now
}

func (s *MonitorSuite) open(opts ...Option) *Monitor {
	opts = append([]Option{WithClock(s.clock), WithMetrics(s.metrics)}, opts...)
	m, err := New(s.dir, testModel, opts...)
	s.Require().NoError(err)
	return m
}

func (s *MonitorSuite) trackAll(m *Monitor, confidences ...float64) {
	for _, c := range confidences {
		s.Require().NoError(m.Track(context.Background(), models.Sample{Confidence: c, ProcessingTime: 0.5}))
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (s *MonitorSuite) TestDriftNeedsTenSamples() {
	m := s.open()
	s.trackAll(m, repeat(10, 9)...)

	_, drifted := m.DetectDrift()
	s.False(drifted)
}

func (s *MonitorSuite) TestLowConfidenceSignalsDegradation() {
	m := s.open()
	s.trackAll(m, repeat(30, 10)...)

	signal, drifted := m.DetectDrift()
	s.True(drifted)
	s.Equal(models.SignalDegradation, signal)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.DriftDetected.WithLabelValues(testModel)))
	s.Equal(30.0, testutil.ToFloat64(s.metrics.TrailingMean.WithLabelValues(testModel)))
}

func (s *MonitorSuite) TestHighConfidenceIsHealthy() {
	m := s.open()
	s.trackAll(m, repeat(90, 10)...)

	signal, drifted := m.DetectDrift()
	s.False(drifted)
	s.Empty(signal)
}

func (s *MonitorSuite) TestOnlyTrailingTenCount() {
	m := s.open()
	s.trackAll(m, repeat(10, 20)...)
	s.trackAll(m, repeat(95, 10)...)

	_, drifted := m.DetectDrift()
	s.False(drifted)
}

func (s *MonitorSuite) TestMeanExactlyAtThresholdIsHealthy() {
	m := s.open()
	s.trackAll(m, repeat(50, 10)...)

	_, drifted := m.DetectDrift()
	s.False(drifted)
}

func (s *MonitorSuite) TestTrackAppendsOneLinePerSample() {
	m := s.open()
	s.trackAll(m, 80, 70)

	data, err := os.ReadFile(PerformanceLogPath(s.dir, testModel))
	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	s.Require().Len(lines, 2)

	var first map[string]any
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &first))
	s.Equal(80.0, first["confidence"])
	s.Equal(0.5, first["processing_time"])
	s.Contains(first, "timestamp")

	samples, err := m.Samples(context.Background())
	s.Require().NoError(err)
	s.Len(samples, 2)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.SamplesTracked.WithLabelValues(testModel)))
}

func (s *MonitorSuite) TestWindowIsBounded() {
	m := s.open(WithWindowSize(12))
	s.trackAll(m, repeat(90, 30)...)

	status := m.Status()
	s.Equal(12, status.PerformanceSamples)
	s.Equal(12, status.WindowCapacity)

	samples, err := m.Samples(context.Background())
	s.Require().NoError(err)
	s.Len(samples, 30)
}

func (s *MonitorSuite) TestWindowSizeFloorsAtDriftWindow() {
	m := s.open(WithWindowSize(3))
	s.Equal(models.MinWindowSize, m.Status().WindowCapacity)
}

func (s *MonitorSuite) TestWindowHydratesFromLog() {
	first := s.open()
	s.trackAll(first, repeat(20, 10)...)

	reopened := s.open()
	signal, drifted := reopened.DetectDrift()
	s.True(drifted)
	s.Equal(models.SignalDegradation, signal)
}

func (s *MonitorSuite) TestCalibration() {
	interval := 7 * 24 * time.Hour
	m := s.open(WithCalibrationInterval(interval))

	s.False(m.CheckCalibration(s.now), "fresh immediately after construction")
	s.False(m.CheckCalibration(s.now.Add(interval)), "exactly at the interval is not yet stale")
	s.True(m.CheckCalibration(s.now.Add(interval+time.Second)))

	later := s.now.Add(10 * 24 * time.Hour)
	s.Require().NoError(m.Recalibrate(context.Background(), later))
	s.False(m.CheckCalibration(later))
	s.True(m.CheckCalibration(later.Add(interval+time.Minute)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Recalibrations.WithLabelValues(testModel)))
}

func (s *MonitorSuite) TestCalibrationSurvivesRestart() {
	m := s.open()
	at := s.now.Add(-3 * time.Hour)
	s.Require().NoError(m.Recalibrate(context.Background(), at))

	s.now = s.now.Add(48 * time.Hour)
	reopened := s.open()
	s.True(at.Equal(reopened.LastCalibration()))
}

func (s *MonitorSuite) TestRecalibrationByAnotherProcessIsVisible() {
	interval := 7 * 24 * time.Hour
	server := s.open(WithCalibrationInterval(interval))
	cli := s.open(WithCalibrationInterval(interval))

	at := s.now.Add(8 * 24 * time.Hour)
	s.True(server.CheckCalibration(at), "stale before the recalibration")
	s.Require().NoError(cli.Recalibrate(context.Background(), at))

	s.now = at.Add(time.Minute)
	s.False(server.CheckCalibration(s.now))
	s.True(at.Equal(server.LastCalibration()))

	status := server.Status()
	s.False(status.CalibrationNeeded)
	s.True(at.Equal(status.LastCalibration))
}

func (s *MonitorSuite) TestCalibrationFallsBackToLastKnownValue() {
	m := s.open()
	at := s.now.Add(-time.Hour)
	s.Require().NoError(m.Recalibrate(context.Background(), at))

	s.Require().NoError(os.WriteFile(CalibrationPath(s.dir, testModel), []byte("{broken"), 0o600))
	s.True(at.Equal(m.LastCalibration()))
	s.False(m.CheckCalibration(s.now))
}

func (s *MonitorSuite) TestConcurrentTrackKeepsLogOrder() {
	const n = 40
	m := s.open(WithWindowSize(n))

	successes, errs := pkgtestutil.RunConcurrentCollect(n, func(i int) error {
		return m.Track(context.Background(), models.Sample{Confidence: float64(i + 1), ProcessingTime: 0.1})
	})
	s.Require().Empty(errs)
	s.Require().Equal(int32(n), successes)

	logged, err := m.Samples(context.Background())
	s.Require().NoError(err)
	s.Require().Len(logged, n)

	m.mu.Lock()
	window := append([]models.Sample(nil), m.window...)
	m.mu.Unlock()
	s.Require().Len(window, n)
	for i := range logged {
		s.Equal(logged[i].Confidence, window[i].Confidence, "position %d", i)
	}
}

func (s *MonitorSuite) TestRecalibrateEmitsAudit() {
	store := audit.NewInMemoryStore()
	m := s.open(WithAuditor(audit.NewPublisher(store)))

	s.Require().NoError(m.Recalibrate(context.Background(), s.now))

	events := store.All()
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventModelRecalibrated), events[0].Action)
}

func (s *MonitorSuite) TestTrackFailureIsStorageError() {
	m := s.open()
	s.Require().NoError(os.MkdirAll(PerformanceLogPath(s.dir, testModel), 0o700))

	err := m.Track(context.Background(), models.Sample{Confidence: 80})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
	s.Zero(m.Status().PerformanceSamples)
}

func (s *MonitorSuite) TestRequiresModel() {
	_, err := New(s.dir, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
