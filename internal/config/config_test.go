package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GITHUB_TOKEN", "GITHUB_REPOSITORIES", "COMPARISON_PRIMARY", "COMPARISON_SECONDARY",
		"DASHBOARD_CACHE_TTL_MINUTES", "RELEASE_CACHE_TTL_MINUTES", "EXPORT_DIR", "EXPORT_MAX_AGE_HOURS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"daangn/stackflow", "daangn/seed-design"}, cfg.Repositories)
	assert.Equal(t, "daangn/stackflow", cfg.ComparisonPrimary)
	assert.Equal(t, "daangn/seed-design", cfg.ComparisonSecondary)
	assert.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	assert.Zero(t, cfg.ReleaseCacheTTL)
	assert.Equal(t, "data/exports", cfg.Export.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Export.MaxAge)
	assert.Equal(t, 3, cfg.GitHub.RateLimit.MaxRetries)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORIES", " acme/api , acme/web ,")
	t.Setenv("COMPARISON_SECONDARY", "acme/api")
	t.Setenv("EXPORT_WORKERS", "4")
	t.Setenv("EXPORT_MAX_AGE_HOURS", "2")
	t.Setenv("GITHUB_REQUESTS_PER_SECOND", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/api", "acme/web"}, cfg.Repositories)
	assert.Equal(t, "acme/api", cfg.ComparisonPrimary)
	assert.Equal(t, "acme/api", cfg.ComparisonSecondary)
	assert.Equal(t, 4, cfg.Export.Workers)
	assert.Equal(t, 2*time.Hour, cfg.Export.MaxAge)
	assert.Equal(t, 2*time.Hour, cfg.Export.JobRetention)
	assert.Equal(t, 0.5, cfg.GitHub.RequestsPerSecond)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("EXPORT_WORKERS", "many")
	_, err := Load()
	assert.ErrorContains(t, err, "EXPORT_WORKERS")

	t.Setenv("EXPORT_WORKERS", "")
	t.Setenv("GITHUB_REPOSITORIES", " , ")
	_, err = Load()
	assert.ErrorContains(t, err, "GITHUB_REPOSITORIES")
}
