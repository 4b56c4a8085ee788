package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"faceguard/internal/auth/models"
	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/httputil"
	"faceguard/pkg/requestcontext"
)

// Service defines the client authentication operations.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest, origin models.Origin) (*models.Credentials, error)
	VerifyCredentials(ctx context.Context, username, password string, origin models.Origin) (*models.Credentials, error)
}

// Handler serves client registration and login.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// HandleRegister implements POST /auth/register.
//
// Input: { "username", "password", "email", "phone", "purpose" }
// Output: { "username", "token" }
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}

	creds, err := h.auth.Register(ctx, req, originFrom(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "registration rejected - username taken",
				"request_id", requestID,
			)
		} else {
			h.logger.ErrorContext(ctx, "registration failed",
				"error", err,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, creds)
}

// HandleLogin implements POST /auth/login and returns the client's token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}

	creds, err := h.auth.VerifyCredentials(ctx, req.Username, req.Password, originFrom(ctx))
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "login failed",
				"error", err,
				"request_id", requestID,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, creds)
}

func originFrom(ctx context.Context) models.Origin {
	return models.Origin{
		IP:     requestcontext.ClientIP(ctx),
		Device: requestcontext.Device(ctx),
	}
}
