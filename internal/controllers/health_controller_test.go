package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"

	"artifactd/internal/services"
)

func TestHealth_ReportsDatasetState(t *testing.T) {
	svc := &stubService{health: services.HealthInfo{
		DatasetPopulated:    true,
		DatasetFresh:        true,
		Versions:            42,
		LastRefresh:         time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ConsecutiveFailures: 0,
	}}
	controller := NewHealthController(svc)

	rec := httptest.NewRecorder()
	controller.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["dataset_populated"])
	assert.Equal(t, true, body["dataset_fresh"])
	assert.Equal(t, float64(42), body["versions"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "uptime_seconds")
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	controller := NewHealthController(&stubService{})

	rec := httptest.NewRecorder()
	controller.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m5s", formatDuration(5*time.Second))
	assert.Equal(t, "1h1m1s", formatDuration(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "25h0m0s", formatDuration(25*time.Hour))
}
