package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := serve(t, New(time.Second), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestReadinessAllUp(t *testing.T) {
	h := New(time.Second)
	h.RegisterCheck("storage", DirWritable(t.TempDir()))

	rec, body := serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "up", body["checks"].(map[string]any)["storage"])
}

func TestReadinessReportsFailures(t *testing.T) {
	h := New(time.Second)
	h.RegisterCheck("engine", func(context.Context) error { return errors.New("connection refused") })
	h.RegisterCheck("storage", func(context.Context) error { return nil })

	rec, body := serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "down: connection refused", checks["engine"])
	assert.Equal(t, "up", checks["storage"])
}

func TestReadinessCheckGetsDeadline(t *testing.T) {
	h := New(50 * time.Millisecond)
	h.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rec, _ := serve(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus(t *testing.T) {
	rec, body := serve(t, New(0), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestDirWritableFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.Error(t, DirWritable(filepath.Join(file, "sub"))(context.Background()))
}
