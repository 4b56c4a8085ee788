package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"faceguard/internal/consent/models"
	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/httputil"
	"faceguard/pkg/requestcontext"
)

// Service defines the consent operations exposed over HTTP.
type Service interface {
	Get(ctx context.Context, userID string) (*models.Record, error)
	Revoke(ctx context.Context, userID string) (*models.RevokeResponse, error)
	List(ctx context.Context) (*models.LogsResponse, error)
}

type Handler struct {
	logger  *slog.Logger
	consent Service
}

func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		consent: consent,
	}
}

// Register mounts the consent routes. The caller is responsible for
// wrapping r with bearer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/consent/logs", h.HandleLogs)
	r.Get("/consent/{userID}", h.HandleGet)
	r.Post("/consent/{userID}/revoke", h.HandleRevoke)
}

// HandleLogs lists every consent record with namespaced user ids.
func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	res, err := h.consent.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consents",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	rec, err := h.consent.Get(ctx, userID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to read consent",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleRevoke flips the user's consent to revoked. An unknown user answers
// 404 with revoked=false in the body.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	res, err := h.consent.Revoke(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke consent",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !res.Revoked {
		httputil.WriteJSON(w, http.StatusNotFound, res)
		return
	}

	h.logger.InfoContext(ctx, "consent revoked",
		"request_id", requestID,
		"client", requestcontext.Client(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}
