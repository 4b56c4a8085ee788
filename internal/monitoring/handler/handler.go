package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"faceguard/internal/monitoring/models"
	"faceguard/pkg/platform/httputil"
	"faceguard/pkg/requestcontext"
)

// Monitor is the drift monitor surface used by the HTTP layer.
type Monitor interface {
	Samples(ctx context.Context) ([]models.Sample, error)
	DetectDrift() (string, bool)
	CheckCalibration(now time.Time) bool
	Recalibrate(ctx context.Context, at time.Time) error
	Status() models.Status
	HasData() bool
}

// ConsentCounter reports how many consent records are on file.
type ConsentCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	monitor  Monitor
	consents ConsentCounter
	settings any
	card     models.ModelCard
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the monitoring and system handler. settings is served verbatim
// by GET /system/settings and must already be sanitized. card is served by
// GET /model/card with the live monitor status attached.
func New(monitor Monitor, consents ConsentCounter, settings any, card models.ModelCard, logger *slog.Logger) *Handler {
	return &Handler{
		monitor:  monitor,
		consents: consents,
		settings: settings,
		card:     card,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts the monitoring routes. The caller wraps r with bearer
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/monitoring/performance", h.HandlePerformance)
	r.Post("/monitoring/calibrate", h.HandleCalibrate)
}

// RegisterSystem mounts the unauthenticated system routes.
func (h *Handler) RegisterSystem(r chi.Router) {
	r.Get("/system/health", h.HandleSystemHealth)
	r.Get("/system/settings", h.HandleSettings)
	r.Get("/model/card", h.HandleModelCard)
}

// HandlePerformance returns the full performance log with the current drift
// and calibration verdicts.
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	samples, err := h.monitor.Samples(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read performance log",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	res := models.PerformanceResponse{
		Logs:              samples,
		CalibrationNeeded: h.monitor.CheckCalibration(h.now()),
	}
	if signal, ok := h.monitor.DetectDrift(); ok {
		res.DriftStatus = &signal
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleCalibrate records that the model was recalibrated now.
func (h *Handler) HandleCalibrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	at := h.now().UTC()

	if err := h.monitor.Recalibrate(ctx, at); err != nil {
		h.logger.ErrorContext(ctx, "failed to record calibration",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := h.monitor.Status()
	httputil.WriteJSON(w, http.StatusOK, models.CalibrateResponse{
		Model:           status.Model,
		LastCalibration: status.LastCalibration,
	})
}

// HandleSystemHealth reports model drift state and storage counters.
func (h *Handler) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := h.monitor.Status()

	count, err := h.consents.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count consent records",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.SystemHealthResponse{
		Status: "healthy",
		ModelStatus: models.ModelStatus{
			DriftDetected:      status.DriftDetected,
			LastCalibration:    status.LastCalibration,
			PerformanceSamples: status.PerformanceSamples,
		},
		Storage: models.StorageStatus{
			ConsentRecords: count,
			MonitoringData: h.monitor.HasData(),
		},
	})
}

func (h *Handler) HandleSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.settings)
}

// HandleModelCard exports the model card as JSON, or as YAML with
// ?format=yaml.
func (h *Handler) HandleModelCard(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	body, err := h.card.WithStatus(h.monitor.Status()).Export(format)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	contentType := "application/json"
	if format == models.CardFormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write model card",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
}
