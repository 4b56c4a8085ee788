package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceguard/internal/platform/config"
)

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Root = filepath.Join(dir, "secure")
	cfg.Monitoring.LogDir = filepath.Join(dir, "monitoring")
	cfg.Logging.AuditFile = filepath.Join(dir, "monitoring", "audit.jsonl")
	cfg.Privacy.BcryptCost = 4
	cfg.Privacy.RetainImages = true

	a, err := newApp(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.auditor.Close)
	return a
}

func TestRouterWiring(t *testing.T) {
	a := testApp(t)
	router, err := a.router()
	require.NoError(t, err)

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/system/health", http.StatusOK},
		{http.MethodGet, "/system/settings", http.StatusOK},
		{http.MethodGet, "/model/card", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/compare", http.StatusUnauthorized},
		{http.MethodGet, "/consent/logs", http.StatusUnauthorized},
		{http.MethodGet, "/monitoring/performance", http.StatusUnauthorized},
		{http.MethodPost, "/monitoring/calibrate", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRegisteredClientReachesProtectedRoutes(t *testing.T) {
	a := testApp(t)
	router, err := a.router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"acme","password":"s3cret-pass","email":"ops@acme.test","purpose":"kyc checks"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var creds struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&creds))
	require.NotEmpty(t, creds.Token)

	req := httptest.NewRequest(http.MethodGet, "/consent/logs", nil)
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsNeverLeakPaths(t *testing.T) {
	a := testApp(t)
	router, err := a.router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/system/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, a.cfg.Storage.Root)
	assert.NotContains(t, body, a.cfg.Engine.URL)
}

func TestModelCardReflectsConfig(t *testing.T) {
	a := testApp(t)
	router, err := a.router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model/card", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var card struct {
		Model             string `json:"model"`
		Detector          string `json:"detector"`
		QualityThresholds struct {
			MinResolution int `json:"min_resolution"`
		} `json:"quality_thresholds"`
		Status *struct {
			CalibrationNeeded bool `json:"calibration_needed"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, a.cfg.Engine.Model, card.Model)
	assert.Equal(t, a.cfg.Engine.Detector, card.Detector)
	assert.Equal(t, a.cfg.Quality.MinResolution, card.QualityThresholds.MinResolution)
	require.NotNil(t, card.Status)
	assert.False(t, card.Status.CalibrationNeeded)
	assert.NotContains(t, rec.Body.String(), a.cfg.Engine.URL)
}
