package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "faceguard/pkg/domain-errors"
)

type loginLike struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *loginLike) Normalize() {
	if r.Username == " alice " {
		r.Username = "alice"
	}
}

func (r *loginLike) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "missing required field: password")
	}
	return nil
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"username":"alice","password":"pw"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[loginLike](ctx, w, req, logger, "rid")
		require.True(t, ok)
		assert.Equal(t, "alice", result.Username)
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[loginLike](ctx, w, req, logger, "rid")
		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CategoryMissingInput, decodeErr(t, w).Error)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"username":" alice ","password":"pw"}`))
		result, ok := DecodeAndPrepare[loginLike](ctx, httptest.NewRecorder(), req, logger, "rid")
		require.True(t, ok)
		assert.Equal(t, "alice", result.Username)
	})

	t.Run("plain validation error becomes validation category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"password":"pw"}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[loginLike](ctx, w, req, logger, "rid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "username is required", decodeErr(t, w).Description)
	})

	t.Run("domain validation error keeps message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"username":"bob"}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[loginLike](ctx, w, req, logger, "rid")
		assert.False(t, ok)
		assert.Equal(t, "missing required field: password", decodeErr(t, w).Description)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
		hasDesc  bool
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "missing required field: user_id"), http.StatusBadRequest, CategoryMissingInput, true},
		{"unreadable image", dErrors.New(dErrors.CodeImageRead, "could not decode image"), http.StatusBadRequest, CategoryInvalidImage, true},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "invalid token"), http.StatusUnauthorized, CategoryInvalidCredential, true},
		{"engine", dErrors.New(dErrors.CodeEngine, "engine returned 500"), http.StatusBadGateway, CategoryEngineFailure, true},
		{"storage hides message", dErrors.New(dErrors.CodeStorage, "open /data/consents.json: permission denied"), http.StatusInternalServerError, CategoryStorageFailure, false},
		{"conflict", dErrors.New(dErrors.CodeConflict, "username already exists"), http.StatusConflict, CategoryConflict, true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, CategoryInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeErr(t, w)
			assert.Equal(t, tt.category, resp.Error)
			assert.Equal(t, tt.hasDesc, resp.Description != "")
		})
	}
}
