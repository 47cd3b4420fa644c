package api

import (
	"time"

	_ "github.com/Kamar-Folarin/release-dashboard/docs"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// Response is the envelope of every successful response
// @Description Successful API response
// @swagger:model Response
type Response struct {
	// Always true
	Success bool `json:"success" example:"true"`
	// Endpoint specific payload
	Data interface{} `json:"data,omitempty"`
	// Human readable outcome for action endpoints
	// @example Dashboard cache cleared successfully
	Message string `json:"message,omitempty" example:"Dashboard cache cleared successfully"`
}

// ErrorResponse represents an API error
// @Description Error response from the API
// @swagger:model ErrorResponse
type ErrorResponse struct {
	// Always false
	Success bool `json:"success" example:"false"`
	// Short error title
	// @example Bad Request
	Error string `json:"error" example:"Bad Request"`
	// Error details
	// @example timeframe is required
	Message string `json:"message" example:"timeframe is required"`
}

// HealthResponse reports service liveness
// @Description Service health
// @swagger:model HealthResponse
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp" example:"2024-03-20T00:00:00Z"`
}

// DashboardResponse wraps dashboard data
// @Description Dashboard payload
// @swagger:model DashboardResponse
type DashboardResponse struct {
	Success bool                 `json:"success" example:"true"`
	Data    models.DashboardData `json:"data"`
}

// ExportResponse wraps the state of an export job
// @Description Export job state
// @swagger:model ExportResponse
type ExportResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    models.ExportData `json:"data"`
}

// ReleaseListResponse wraps a release list
// @Description Releases of the configured repositories
// @swagger:model ReleaseListResponse
type ReleaseListResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    []models.Release `json:"data"`
}

// ReleaseStatsResponse wraps per-release comparison statistics
// @Description Release comparison statistics of one repository
// @swagger:model ReleaseStatsResponse
type ReleaseStatsResponse struct {
	Success bool                          `json:"success" example:"true"`
	Data    models.RepositoryReleaseStats `json:"data"`
}

// StatisticsResponse wraps every release rollup
// @Description Release rollups
// @swagger:model StatisticsResponse
type StatisticsResponse struct {
	Success bool                 `json:"success" example:"true"`
	Data    models.AllStatistics `json:"data"`
}
