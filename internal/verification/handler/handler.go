package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"faceguard/internal/quality"
	"faceguard/internal/verification/models"
	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/httputil"
	pkgstrings "faceguard/pkg/platform/strings"
	"faceguard/pkg/requestcontext"
)

// DefaultMaxUploadBytes bounds the whole multipart body when no limit is
// configured.
const DefaultMaxUploadBytes int64 = 32 << 20

// Form parts held in memory before spilling to disk.
const formMemory = 8 << 20

// Service runs one comparison.
type Service interface {
	Compare(ctx context.Context, req *models.Request) (*models.Outcome, error)
}

// QualityFailureResponse is answered with 422 when either image misses a
// quality threshold.
type QualityFailureResponse struct {
	Error          string          `json:"error"`
	Description    string          `json:"error_description"`
	ReferencePass  bool            `json:"reference_pass"`
	LivePass       bool            `json:"live_pass"`
	ReferenceImage quality.Metrics `json:"reference_image"`
	LiveImage      quality.Metrics `json:"live_image"`
}

type Handler struct {
	logger    *slog.Logger
	compare   Service
	maxUpload int64
}

func New(compare Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		logger:    logger,
		compare:   compare,
		maxUpload: maxUploadBytes,
	}
}

// Register mounts POST /compare. The caller is responsible for wrapping r
// with bearer authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compare", h.HandleCompare)
}

// HandleCompare reads the two images and consent fields from a multipart
// form and runs the comparison.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		h.logger.WarnContext(ctx, "failed to parse compare form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, formError(err, h.maxUpload))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	req, err := readRequest(r.MultipartForm)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.compare.Compare(ctx, req)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) && !dErrors.HasCode(err, dErrors.CodeImageRead) {
			h.logger.ErrorContext(ctx, "comparison failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	if failure := outcome.QualityFailure; failure != nil {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, QualityFailureResponse{
			Error:          httputil.CategoryQualityFailure,
			Description:    failure.Message,
			ReferencePass:  failure.ReferencePass,
			LivePass:       failure.LivePass,
			ReferenceImage: failure.ReferenceImage,
			LiveImage:      failure.LiveImage,
		})
		return
	}
	if outcome.Result == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "comparison produced no result"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome.Result)
}

func readRequest(form *multipart.Form) (*models.Request, error) {
	ref, err := readFile(form, "reference_image")
	if err != nil {
		return nil, err
	}
	live, err := readFile(form, "live_image")
	if err != nil {
		return nil, err
	}

	retention := strings.TrimSpace(formValue(form, "retention_period"))
	if retention == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: retention_period")
	}
	days, err := strconv.Atoi(retention)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "retention_period must be a whole number of days")
	}

	return &models.Request{
		UserID:          strings.TrimSpace(formValue(form, "user_id")),
		RetentionPeriod: days,
		Purpose:         strings.TrimSpace(formValue(form, "purpose")),
		DataTypes:       pkgstrings.SplitList(formValue(form, "data_types")),
		ReferenceImage:  ref,
		LiveImage:       live,
	}, nil
}

func readFile(form *multipart.Form, field string) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: "+field)
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImageRead, "could not read "+field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImageRead, "could not read "+field)
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "missing required field: "+field)
	}
	return data, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("upload exceeds %d bytes", limit))
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "request must be multipart/form-data")
}
