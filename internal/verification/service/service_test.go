package service

// Unit tests for the comparison state machine with every collaborator mocked.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"faceguard/internal/audit"
	consentModels "faceguard/internal/consent/models"
	"faceguard/internal/engine"
	monitoringModels "faceguard/internal/monitoring/models"
	"faceguard/internal/quality"
	"faceguard/internal/verification/metrics"
	"faceguard/internal/verification/models"
	"faceguard/internal/verification/service/mocks"
	dErrors "faceguard/pkg/domain-errors"
)

var (
	refImage  = []byte("reference-bytes")
	liveImage = []byte("live-bytes")
	passing   = quality.Metrics{Brightness: 120, Contrast: 45, HasFace: true, Resolution: 480}
	tooDark   = quality.Metrics{Brightness: 12, Contrast: 45, HasFace: true, Resolution: 480}
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	consent    *mocks.MockConsentRecorder
	gate       *mocks.MockQualityGate
	engine     *mocks.MockEngine
	monitor    *mocks.MockMonitor
	vault      *mocks.MockImageVault
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.consent = mocks.NewMockConsentRecorder(s.ctrl)
	s.gate = mocks.NewMockQualityGate(s.ctrl)
	s.engine = mocks.NewMockEngine(s.ctrl)
	s.monitor = mocks.NewMockMonitor(s.ctrl)
	s.vault = mocks.NewMockImageVault(s.ctrl)
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	s.engine.EXPECT().Model().Return("Facenet512").AnyTimes()
	s.engine.EXPECT().Detector().Return("opencv").AnyTimes()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	}, opts...)
	return NewService(s.consent, s.gate, s.engine, s.monitor,
		audit.NewPublisher(s.auditStore), slog.New(slog.DiscardHandler), opts...)
}

func request() *models.Request {
	return &models.Request{
		UserID:          "u1",
		RetentionPeriod: 30,
		ReferenceImage:  refImage,
		LiveImage:       liveImage,
	}
}

func (s *ServiceSuite) expectConsent() {
	s.consent.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req consentModels.RecordRequest) (*consentModels.Record, error) {
			return &consentModels.Record{UserID: req.UserID, Purpose: consentModels.DefaultPurpose, RetentionPeriod: req.RetentionPeriod}, nil
		})
}

func (s *ServiceSuite) expectQuality(ref, live quality.Metrics) {
	th := quality.DefaultThresholds()
	s.gate.EXPECT().Evaluate(gomock.Any(), refImage).Return(ref, th.Pass(ref), nil)
	s.gate.EXPECT().Evaluate(gomock.Any(), liveImage).Return(live, th.Pass(live), nil)
}

func (s *ServiceSuite) expectEngine(v engine.Verification, refAge, liveAge float64) {
	s.engine.EXPECT().Verify(gomock.Any(), refImage, liveImage).Return(v, nil)
	s.engine.EXPECT().Analyze(gomock.Any(), refImage).Return(engine.Analysis{Age: refAge, DominantGender: "Woman", DominantEmotion: "neutral"}, nil)
	s.engine.EXPECT().Analyze(gomock.Any(), liveImage).Return(engine.Analysis{Age: liveAge, DominantGender: "Woman", DominantEmotion: "happy"}, nil)
}

func (s *ServiceSuite) TestCompletedComparison() {
	s.expectConsent()
	s.expectQuality(passing, passing)
	s.expectEngine(engine.Verification{Verified: true, Distance: 0.2, Threshold: 0.4}, 30, 32)
	var tracked monitoringModels.Sample
	s.monitor.EXPECT().Track(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sample monitoringModels.Sample) error {
			tracked = sample
			return nil
		})

	outcome, err := s.newService().Compare(context.Background(), request())

	s.Require().NoError(err)
	s.Equal(models.StateCompleted, outcome.State)
	s.Equal([]models.State{
		models.StateReceived,
		models.StateConsentValidated,
		models.StateQualityChecked,
		models.StateVerified,
		models.StateRecorded,
		models.StateCompleted,
	}, outcome.Trail)

	res := outcome.Result
	s.Require().NotNil(res)
	s.True(res.VerificationResult.Match)
	s.Equal(80.0, res.VerificationResult.Confidence)
	s.Equal(60.0, res.VerificationResult.Threshold)
	s.Contains(res.VerificationResult.DetailedExplanation, "The images are matching")
	s.Contains(res.VerificationResult.DetailedExplanation, "very close (difference of 2 years)")
	s.Equal("Facenet512", res.TechnicalDetails.Model)
	s.Equal("opencv", res.TechnicalDetails.Detector)
	s.Equal(engine.DefaultDistanceMetric, res.TechnicalDetails.DistanceMetric)
	s.Equal(0.2, res.TechnicalDetails.RawDistance)
	s.Equal(passing, res.Analysis.ReferenceImage.Quality)
	s.Equal("happy", res.Analysis.LiveImage.Emotion)

	s.Equal(80.0, tracked.Confidence)
	s.True(s.now.Equal(tracked.Timestamp))

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Comparisons.WithLabelValues("completed", "true")))
	events := s.auditStore.All()
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventVerificationDone), events[0].Action)
	s.Equal("match", events[0].Decision)
}

func (s *ServiceSuite) TestMissingFieldsRejectWithoutLedgerWrite() {
	tests := map[string]func(r *models.Request){
		"no reference image": func(r *models.Request) { r.ReferenceImage = nil },
		"no live image":      func(r *models.Request) { r.LiveImage = nil },
		"no user id":         func(r *models.Request) { r.UserID = "" },
		"no retention":       func(r *models.Request) { r.RetentionPeriod = 0 },
	}
	for name, mutate := range tests {
		s.Run(name, func() {
			req := request()
			mutate(req)

			outcome, err := s.newService().Compare(context.Background(), req)

			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(models.StateRejected, outcome.State)
			s.Equal([]models.State{models.StateReceived, models.StateRejected}, outcome.Trail)
			s.Equal(err.Error(), outcome.Reason)
		})
	}
}

func (s *ServiceSuite) TestConsentStorageFailure() {
	s.consent.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeStorage, "failed to record consent"))

	outcome, err := s.newService().Compare(context.Background(), request())

	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
	s.Equal(models.StateRejected, outcome.State)
	s.Equal("failed to record consent", outcome.Reason)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues(models.ReasonStorage)))
}

func (s *ServiceSuite) TestQualityFailureIsAnOutcomeNotAnError() {
	s.expectConsent()
	s.expectQuality(passing, tooDark)

	outcome, err := s.newService().Compare(context.Background(), request())

	s.Require().NoError(err)
	s.Equal(models.StateRejected, outcome.State)
	s.Nil(outcome.Result)
	s.Require().NotNil(outcome.QualityFailure)
	s.Equal(models.QualityFailureMessage, outcome.QualityFailure.Message)
	s.True(outcome.QualityFailure.ReferencePass)
	s.False(outcome.QualityFailure.LivePass)
	s.Equal(tooDark, outcome.QualityFailure.LiveImage)
	s.Equal([]models.State{models.StateReceived, models.StateConsentValidated, models.StateRejected}, outcome.Trail)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.QualityFailures.WithLabelValues(models.LabelLive)))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.QualityFailures.WithLabelValues(models.LabelReference)))
}

func (s *ServiceSuite) TestUnreadableImage() {
	s.expectConsent()
	s.gate.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
		Return(quality.Metrics{}, false, dErrors.New(dErrors.CodeImageRead, "could not decode image")).
		Times(2)

	outcome, err := s.newService().Compare(context.Background(), request())

	s.True(dErrors.HasCode(err, dErrors.CodeImageRead))
	s.Equal(models.StateRejected, outcome.State)
	s.Equal("could not decode image", outcome.Reason)
}

func (s *ServiceSuite) TestEngineFailureSurfacesMessage() {
	s.expectConsent()
	s.expectQuality(passing, passing)
	s.engine.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(engine.Verification{}, errors.New("connection refused")).Times(1)
	s.engine.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(engine.Analysis{Age: 30}, nil).Times(2)

	outcome, err := s.newService().Compare(context.Background(), request())

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeEngine))
	s.Equal("connection refused", outcome.Reason)
	s.Equal(models.StateRejected, outcome.State)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejections.WithLabelValues(models.ReasonEngine)))
}

func (s *ServiceSuite) TestMonitorFailureRejects() {
	s.expectConsent()
	s.expectQuality(passing, passing)
	s.expectEngine(engine.Verification{Verified: false, Distance: 0.7, Threshold: 0.4}, 30, 50)
	s.monitor.EXPECT().Track(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	outcome, err := s.newService().Compare(context.Background(), request())

	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
	s.Equal(models.StateRejected, outcome.State)
	s.Equal(models.StateVerified, outcome.Trail[len(outcome.Trail)-2])
}

func (s *ServiceSuite) TestEngineCallsSurviveCallerCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	s.expectConsent()
	s.gate.EXPECT().Evaluate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, []byte) (quality.Metrics, bool, error) {
			return passing, true, nil
		}).Times(2)

	var once sync.Once
	s.engine.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _, _ []byte) (engine.Verification, error) {
			once.Do(cancel)
			s.NoError(ctx.Err())
			return engine.Verification{Verified: true, Distance: 0.1, Threshold: 0.4}, nil
		})
	s.engine.EXPECT().Analyze(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ []byte) (engine.Analysis, error) {
			once.Do(cancel)
			return engine.Analysis{Age: 40}, nil
		}).Times(2)
	s.monitor.EXPECT().Track(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ monitoringModels.Sample) error {
			s.NoError(ctx.Err())
			return nil
		})

	outcome, err := s.newService().Compare(ctx, request())

	s.Require().NoError(err)
	s.Equal(models.StateCompleted, outcome.State)
}

func (s *ServiceSuite) TestRetentionSealsAndSchedulesBothImages() {
	s.expectConsent()
	s.expectQuality(passing, passing)
	s.expectEngine(engine.Verification{Verified: true, Distance: 0.2, Threshold: 0.4}, 30, 31)
	s.vault.EXPECT().Seal(gomock.Any(), "u1", models.LabelReference, refImage).Return("/blobs/ref.bin", nil)
	s.vault.EXPECT().Seal(gomock.Any(), "u1", models.LabelLive, liveImage).Return("/blobs/live.bin", nil)
	s.consent.EXPECT().ScheduleDeletion(gomock.Any(), "u1", "/blobs/ref.bin").Return(nil)
	s.consent.EXPECT().ScheduleDeletion(gomock.Any(), "u1", "/blobs/live.bin").Return(nil)
	s.monitor.EXPECT().Track(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := s.newService(WithVault(s.vault)).Compare(context.Background(), request())

	s.Require().NoError(err)
	s.Equal(models.StateCompleted, outcome.State)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.ImagesRetained))
}

func (s *ServiceSuite) TestRetentionFailureRejects() {
	s.expectConsent()
	s.expectQuality(passing, passing)
	s.expectEngine(engine.Verification{Verified: true, Distance: 0.2, Threshold: 0.4}, 30, 31)
	s.vault.EXPECT().Seal(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", dErrors.New(dErrors.CodeStorage, "failed to write sealed blob"))

	outcome, err := s.newService(WithVault(s.vault)).Compare(context.Background(), request())

	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
	s.Equal(models.StateRejected, outcome.State)
}

func (s *ServiceSuite) TestNilRequest() {
	outcome, err := s.newService().Compare(context.Background(), nil)

	s.Require().Error(err)
	s.Equal(models.StateRejected, outcome.State)
}
