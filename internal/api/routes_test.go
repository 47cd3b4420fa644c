package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter_Routes(t *testing.T) {
	d := setupTestRouter()

	registered := make(map[string]bool)
	for _, r := range d.router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /metrics",
		"GET /swagger/*any",
		"GET /api/v1/dashboard",
		"POST /api/v1/dashboard/clear-cache",
		"POST /api/v1/export/dashboard-csv",
		"GET /api/v1/export/status/:exportId",
		"GET /api/v1/export/download/:filename",
		"POST /api/v1/export/cleanup",
		"GET /api/v1/github/releases",
		"POST /api/v1/github/releases/fetch",
		"GET /api/v1/github/releases/stats",
		"POST /api/v1/github/cache/clear",
		"POST /api/v1/csv/generate-all",
		"POST /api/v1/csv/generate/:type",
		"GET /api/v1/csv/statistics",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "route %s not registered", route)
	}
	assert.Len(t, registered, len(expected))
}

func TestHealth(t *testing.T) {
	d := setupTestRouter()

	w := d.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestMetrics(t *testing.T) {
	d := setupTestRouter()

	w := d.do(http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "release_dashboard_github_rate_limit_wait_seconds")
}

func TestUnknownRoute(t *testing.T) {
	d := setupTestRouter()

	w := d.do(http.MethodGet, "/api/v1/unknown", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWrongMethod(t *testing.T) {
	d := setupTestRouter()

	w := d.do(http.MethodGet, "/api/v1/dashboard/clear-cache", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	d.dashboards.AssertNotCalled(t, "ClearCache")
}
