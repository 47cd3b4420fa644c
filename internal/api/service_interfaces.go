package api

import (
	"context"
	"time"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// DashboardService defines the dashboard operations used by the handlers
type DashboardService interface {
	// GetDashboardData returns the cached or freshly generated dashboard
	GetDashboardData(ctx context.Context, params models.DashboardFilterParams) (*models.DashboardData, error)

	// ClearCache drops every cached dashboard
	ClearCache()
}

// ExportService defines the export job operations used by the handlers
type ExportService interface {
	// Create queues an export job and returns its initial state
	Create(params models.DashboardFilterParams, options models.ExportOptions) (models.ExportData, error)

	// Status returns the current state of a job
	Status(id string) (models.ExportData, bool)

	// FilePath resolves a download name inside the export directory
	FilePath(filename string) (string, error)

	// Cleanup deletes export files older than maxAge
	Cleanup(maxAge time.Duration) (int, error)
}

// ReportService defines the statistics file generation used by the handlers
type ReportService interface {
	// GenerateAll writes every report and returns the path per report type
	GenerateAll(releases []models.Release) (map[string]string, error)

	// Generate writes one report and returns its path
	Generate(kind string, releases []models.Release) (string, error)
}
