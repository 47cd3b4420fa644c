package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
	"github.com/Kamar-Folarin/release-dashboard/internal/export"
	"github.com/Kamar-Folarin/release-dashboard/internal/github"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/stats"
	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

const defaultCleanupMaxAge = 24 * time.Hour

// Options holds handler settings taken from configuration
type Options struct {
	DefaultOwner        string
	ComparisonPrimary   string
	ComparisonSecondary string
}

type Handler struct {
	releases     github.ReleaseSource
	dashboards   DashboardService
	exports      ExportService
	reports      ReportService
	defaultOwner string
	primary      string
	secondary    string
	logger       *logrus.Logger
}

func NewHandler(
	releases github.ReleaseSource,
	dashboards DashboardService,
	exports ExportService,
	reports ReportService,
	opts Options,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		releases:     releases,
		dashboards:   dashboards,
		exports:      exports,
		reports:      reports,
		defaultOwner: opts.DefaultOwner,
		primary:      opts.ComparisonPrimary,
		secondary:    opts.ComparisonSecondary,
		logger:       logger,
	}
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// GetDashboard returns dashboard data for the query filters
func (h *Handler) GetDashboard(c *gin.Context) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondWithError(c, apperrors.NewValidationError("invalid query parameters", err))
		return
	}

	var filters models.DashboardFilters
	if err := decodeJSONParam("filters", q.Filters, &filters); err != nil {
		h.respondWithError(c, err)
		return
	}
	var sort *models.SortSpec
	if q.Sort != "" {
		sort = &models.SortSpec{}
		if err := decodeJSONParam("sort", q.Sort, sort); err != nil {
			h.respondWithError(c, err)
			return
		}
	}

	params, err := h.filterParams(q.Timeframe, q.StartDate, q.EndDate, filters, sort)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	data, err := h.dashboards.GetDashboardData(c.Request.Context(), params)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	respondWithData(c, http.StatusOK, data)
}

// ClearDashboardCache drops every cached dashboard
func (h *Handler) ClearDashboardCache(c *gin.Context) {
	h.dashboards.ClearCache()
	respondWithMessage(c, "Dashboard cache cleared successfully")
}

// StartExport queues a dashboard CSV export
func (h *Handler) StartExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}
	if req.Timeframe == "" {
		h.respondWithError(c, apperrors.NewValidationError("timeframe is required", nil))
		return
	}
	if req.ExportOptions == nil {
		h.respondWithError(c, apperrors.NewValidationError("exportOptions is required", nil))
		return
	}

	params, err := h.filterParams(req.Timeframe, req.StartDate, req.EndDate, req.Filters, req.Sort)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	data, err := h.exports.Create(params, *req.ExportOptions)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	respondWithData(c, http.StatusOK, data)
}

// GetExportStatus returns the progress of an export job
func (h *Handler) GetExportStatus(c *gin.Context) {
	id := c.Param("exportId")
	data, ok := h.exports.Status(id)
	if !ok {
		h.respondWithError(c, apperrors.NewNotFoundError(fmt.Sprintf("Export job with ID %s not found", id), nil))
		return
	}
	respondWithData(c, http.StatusOK, data)
}

// DownloadExport streams a finished export file
func (h *Handler) DownloadExport(c *gin.Context) {
	filename := c.Param("filename")
	path, err := h.exports.FilePath(filename)
	if err != nil {
		h.respondWithError(c, apperrors.NewNotFoundError(fmt.Sprintf("File %s not found", filename), err))
		return
	}

	c.Header("Content-Type", "text/csv")
	c.FileAttachment(path, filename)
}

// CleanupExports deletes export files older than maxAge milliseconds
func (h *Handler) CleanupExports(c *gin.Context) {
	maxAge := defaultCleanupMaxAge
	if raw := c.Query("maxAge"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			h.respondWithError(c, apperrors.NewValidationError("maxAge must be a positive number of milliseconds", err))
			return
		}
		maxAge = time.Duration(ms) * time.Millisecond
	}

	removed, err := h.exports.Cleanup(maxAge)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Export files cleaned up successfully",
		Data:    gin.H{"removed": removed},
	})
}

// GetReleases returns the releases of every configured repository
func (h *Handler) GetReleases(c *gin.Context) {
	releases, err := h.releases.FetchAllReleases(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	respondWithData(c, http.StatusOK, releases)
}

// FetchReleases loads releases into the cache and reports how many there are
func (h *Handler) FetchReleases(c *gin.Context) {
	releases, err := h.releases.FetchAllReleases(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Releases fetched successfully",
		Data:    gin.H{"count": len(releases)},
	})
}

// GetReleaseStats compares each release of a repository with its predecessor
func (h *Handler) GetReleaseStats(c *gin.Context) {
	var q ReleaseStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondWithError(c, apperrors.NewValidationError("Repository parameter is required", err))
		return
	}

	start, end, err := parseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	repository := utils.QualifyRepository(q.Repository, h.defaultOwner)
	releaseStats, err := h.releases.FetchRepositoryReleaseStats(c.Request.Context(), repository, start, end)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	respondWithData(c, http.StatusOK, releaseStats)
}

// ClearGitHubCache flushes release data and the dashboards built from it
func (h *Handler) ClearGitHubCache(c *gin.Context) {
	h.releases.ClearCaches()
	h.dashboards.ClearCache()
	respondWithMessage(c, "GitHub caches cleared successfully")
}

// GenerateAllCSV writes every statistics file
func (h *Handler) GenerateAllCSV(c *gin.Context) {
	releases, err := h.releases.FetchAllReleases(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	files, err := h.reports.GenerateAll(releases)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "CSV files generated successfully",
		Data:    files,
	})
}

// GenerateCSV writes one statistics file
func (h *Handler) GenerateCSV(c *gin.Context) {
	kind := c.Param("type")
	if !validReportType(kind) {
		h.respondWithError(c, apperrors.NewValidationError(fmt.Sprintf("Type '%s' is not supported", kind), nil))
		return
	}

	releases, err := h.releases.FetchAllReleases(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	path, err := h.reports.Generate(kind, releases)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("CSV file '%s' generated successfully", kind),
		Data:    gin.H{"file": path},
	})
}

// GetStatistics returns every release rollup
func (h *Handler) GetStatistics(c *gin.Context) {
	releases, err := h.releases.FetchAllReleases(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	respondWithData(c, http.StatusOK, stats.All(releases, h.primary, h.secondary))
}

func validReportType(kind string) bool {
	for _, t := range export.ReportTypes() {
		if t == kind {
			return true
		}
	}
	return false
}

func respondWithData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{Success: true, Data: data})
}

func respondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func (h *Handler) respondWithError(c *gin.Context, err error) {
	code, title := statusFor(err)
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"status": code,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Success: false,
		Error:   title,
		Message: errorMessage(err),
	})
}

// statusFor maps an error to an HTTP status and short title
func statusFor(err error) (int, string) {
	var ghValidation *github.ValidationError
	switch {
	case github.IsRateLimitError(err):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case github.IsUnauthorizedError(err):
		return http.StatusUnauthorized, "Unauthorized"
	case github.IsNotFoundError(err) || apperrors.IsNotFound(err):
		return http.StatusNotFound, "Not Found"
	case errors.As(err, &ghValidation) || apperrors.IsValidationError(err):
		return http.StatusBadRequest, "Bad Request"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Type == apperrors.ErrInvalidInput && appErr.Cause != nil {
			return appErr.Message + ": " + appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
