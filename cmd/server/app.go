package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"faceguard/internal/audit"
	authHandler "faceguard/internal/auth/handler"
	authMetrics "faceguard/internal/auth/metrics"
	authService "faceguard/internal/auth/service"
	authStore "faceguard/internal/auth/store"
	consentHandler "faceguard/internal/consent/handler"
	consentMetrics "faceguard/internal/consent/metrics"
	consentService "faceguard/internal/consent/service"
	consentStore "faceguard/internal/consent/store"
	"faceguard/internal/engine"
	monitoringHandler "faceguard/internal/monitoring/handler"
	monitoringMetrics "faceguard/internal/monitoring/metrics"
	monitoringModels "faceguard/internal/monitoring/models"
	"faceguard/internal/monitoring/monitor"
	"faceguard/internal/platform/config"
	"faceguard/internal/platform/health"
	"faceguard/internal/platform/tracer"
	"faceguard/internal/quality"
	retentionMetrics "faceguard/internal/retention/metrics"
	retentionStore "faceguard/internal/retention/store"
	"faceguard/internal/retention/worker"
	httptransport "faceguard/internal/transport/http"
	"faceguard/internal/vault"
	verificationHandler "faceguard/internal/verification/handler"
	verificationMetrics "faceguard/internal/verification/metrics"
	verificationService "faceguard/internal/verification/service"
	"faceguard/pkg/platform/middleware/metadata"
	"faceguard/pkg/platform/middleware/request"
)

// app holds the long-lived services built once per process.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	auditor  *audit.Publisher

	auth      *authService.Service
	consent   *consentService.Service
	ledger    *consentStore.Ledger
	monitor   *monitor.Monitor
	compare   *verificationService.Service
	sweeper   *worker.Sweeper
	engine    *engine.Client
	retention *retentionStore.Store
}

func newAuditor(cfg *config.Config, logger *slog.Logger) *audit.Publisher {
	return audit.NewPublisher(audit.NewFileStore(cfg.Logging.AuditFile),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(logger),
	)
}

func newMonitor(cfg *config.Config, logger *slog.Logger, auditor *audit.Publisher, m *monitoringMetrics.Metrics) (*monitor.Monitor, error) {
	opts := []monitor.Option{
		monitor.WithWindowSize(cfg.Monitoring.WindowSize),
		monitor.WithCalibrationInterval(cfg.Monitoring.CalibrationInterval),
		monitor.WithAuditor(auditor),
		monitor.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, monitor.WithMetrics(m))
	}
	return monitor.New(cfg.Monitoring.LogDir, cfg.Engine.Model, opts...)
}

func newAuthService(cfg *config.Config, logger *slog.Logger, auditor *audit.Publisher, m *authMetrics.Metrics) *authService.Service {
	opts := []authService.Option{authService.WithBcryptCost(cfg.Privacy.BcryptCost)}
	if m != nil {
		opts = append(opts, authService.WithMetrics(m))
	}
	return authService.NewService(authStore.New(cfg.Storage.Root), auditor, logger, opts...)
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auditor := newAuditor(cfg, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		auditor:  auditor,
	}

	a.retention = retentionStore.New(cfg.Storage.Root)
	a.ledger = consentStore.New(cfg.Storage.Root, consentStore.WithScheduler(a.retention))
	a.consent = consentService.NewService(a.ledger, auditor, logger,
		consentService.WithMetrics(consentMetrics.New(reg)),
	)
	a.auth = newAuthService(cfg, logger, auditor, authMetrics.New(reg))

	var err error
	a.monitor, err = newMonitor(cfg, logger, auditor, monitoringMetrics.New(reg))
	if err != nil {
		return nil, fmt.Errorf("open drift monitor: %w", err)
	}

	a.engine = engine.NewClient(cfg.Engine.URL,
		engine.WithModel(cfg.Engine.Model),
		engine.WithDetector(cfg.Engine.Detector),
		engine.WithTimeout(cfg.Engine.Timeout),
	)
	gate := quality.New(quality.Thresholds{
		MinBrightness:     cfg.Quality.MinBrightness,
		MinContrast:       cfg.Quality.MinContrast,
		MinResolution:     cfg.Quality.MinResolution,
		MinFaceConfidence: cfg.Quality.MinFaceConfidence,
	}, a.engine, quality.WithAnalysisMaxSide(cfg.Quality.AnalysisMaxSide))

	opts := []verificationService.Option{
		verificationService.WithMetrics(verificationMetrics.New(reg)),
		verificationService.WithTracer(tracer.NewOTel()),
	}
	if cfg.Privacy.RetainImages {
		v, err := vault.New(cfg.Storage.Root)
		if err != nil {
			return nil, fmt.Errorf("open vault: %w", err)
		}
		opts = append(opts, verificationService.WithVault(v))
	}
	a.compare = verificationService.NewService(a.consent, gate, a.engine, a.monitor, auditor, logger, opts...)

	a.sweeper, err = worker.New(a.retention,
		worker.WithInterval(cfg.Privacy.SweepInterval),
		worker.WithLogger(logger),
		worker.WithAuditor(auditor),
		worker.WithMetrics(retentionMetrics.New(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("create retention sweeper: %w", err)
	}
	return a, nil
}

func modelCard(s config.Settings) monitoringModels.ModelCard {
	return monitoringModels.ModelCard{
		Model:       s.Engine.Model,
		Detector:    s.Engine.Detector,
		IntendedUse: monitoringModels.CardIntendedUse,
		Limitations: monitoringModels.CardLimitations(),
		QualityThresholds: monitoringModels.CardQuality{
			MinBrightness:     s.Quality.MinBrightness,
			MinContrast:       s.Quality.MinContrast,
			MinResolution:     s.Quality.MinResolution,
			MinFaceConfidence: s.Quality.MinFaceConfidence,
		},
		Monitoring: monitoringModels.CardMonitoring{
			DriftWindow:     monitoringModels.DriftWindow,
			DriftThreshold:  monitoringModels.DriftThreshold,
			WindowSize:      s.Monitoring.WindowSize,
			CalibrationDays: s.Monitoring.CalibrationDays,
		},
	}
}

// router mounts every HTTP surface of the gateway.
func (a *app) router() (http.Handler, error) {
	proxies, err := metadata.ParseTrustedProxies(a.cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	probes := health.New(2 * time.Second)
	probes.RegisterCheck("storage", health.DirWritable(a.cfg.Storage.Root))
	probes.RegisterCheck("monitoring", health.DirWritable(a.cfg.Monitoring.LogDir))

	settings := a.cfg.Public()
	monitoring := monitoringHandler.New(a.monitor, a.ledger, settings, modelCard(settings), a.logger)

	return httptransport.NewRouter(httptransport.Config{
		Public: []httptransport.Mount{
			probes.Register,
			authHandler.New(a.auth, a.logger).Register,
			monitoring.RegisterSystem,
		},
		Protected: []httptransport.Mount{
			verificationHandler.New(a.compare, a.logger, a.cfg.Server.MaxUploadBytes).Register,
			consentHandler.New(a.consent, a.logger).Register,
			monitoring.Register,
		},
		Tokens:         a.auth,
		TrustedProxies: proxies,
		MaxBodyBytes:   a.cfg.Server.MaxUploadBytes,
		RequestMetrics: request.NewMetrics(a.registry),
		Gatherer:       a.registry,
	}, a.logger), nil
}
