package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "faceguard/pkg/domain-errors"
)

// Error categories returned in the "error" field of error envelopes.
const (
	CategoryMissingInput      = "missing_input"
	CategoryInvalidImage      = "invalid_image"
	CategoryInvalidCredential = "invalid_credential"
	CategoryQualityFailure    = "quality_failure"
	CategoryEngineFailure     = "engine_failure"
	CategoryStorageFailure    = "storage_failure"
	CategoryDecryptionFailure = "decryption_failed"
	CategoryConflict          = "conflict"
	CategoryNotFound          = "not_found"
	CategoryInternal          = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates transport-agnostic domain errors into HTTP responses.
// Internal and storage errors never echo their message to the caller.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: CategoryInternal})
		return
	}

	resp := ErrorResponse{Error: DomainCodeToCategory(domainErr.Code)}
	switch domainErr.Code {
	case dErrors.CodeInternal, dErrors.CodeStorage, dErrors.CodeDecryption:
	default:
		resp.Description = domainErr.Message
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeImageRead:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeEngine:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToCategory translates domain error codes to response categories.
func DomainCodeToCategory(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return CategoryNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return CategoryMissingInput
	case dErrors.CodeImageRead:
		return CategoryInvalidImage
	case dErrors.CodeConflict:
		return CategoryConflict
	case dErrors.CodeUnauthorized:
		return CategoryInvalidCredential
	case dErrors.CodeEngine:
		return CategoryEngineFailure
	case dErrors.CodeStorage:
		return CategoryStorageFailure
	case dErrors.CodeDecryption:
		return CategoryDecryptionFailure
	default:
		return CategoryInternal
	}
}
