package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Release Dashboard API
// @version 1.0
// @description API for GitHub release statistics, dashboards and CSV exports
// @contact.name API Support
// @contact.url http://github.com/Kamar-Folarin
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		// @Summary Get dashboard data
		// @Description Aggregated release, commit and contributor statistics for the filtered releases
		// @Tags dashboard
		// @Produce json
		// @Param timeframe query string false "Time series granularity" Enums(daily, weekly, monthly) default(daily)
		// @Param startDate query string false "Inclusive lower bound (RFC3339 or YYYY-MM-DD)" example("2024-01-01")
		// @Param endDate query string false "Inclusive upper bound (RFC3339 or YYYY-MM-DD)" example("2024-03-31")
		// @Param filters query string false "JSON filters" example({"repository":["daangn/stackflow"],"releaseType":["regular"]})
		// @Param sort query string false "JSON sort" example({"field":"releaseCount","direction":"desc"})
		// @Success 200 {object} DashboardResponse
		// @Failure 400 {object} ErrorResponse
		// @Failure 429 {object} ErrorResponse
		// @Failure 500 {object} ErrorResponse
		// @Router /dashboard [get]
		v1.GET("/dashboard", h.GetDashboard)

		// @Summary Clear dashboard cache
		// @Tags dashboard
		// @Produce json
		// @Success 200 {object} Response
		// @Router /dashboard/clear-cache [post]
		v1.POST("/dashboard/clear-cache", h.ClearDashboardCache)

		exports := v1.Group("/export")
		{
			// @Summary Start a dashboard CSV export
			// @Description Queues an export job and returns immediately; poll the status endpoint for progress
			// @Tags export
			// @Accept json
			// @Produce json
			// @Param request body ExportRequest true "Export request"
			// @Success 200 {object} ExportResponse
			// @Failure 400 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /export/dashboard-csv [post]
			exports.POST("/dashboard-csv", h.StartExport)

			// @Summary Get export job status
			// @Tags export
			// @Produce json
			// @Param exportId path string true "Export job ID"
			// @Success 200 {object} ExportResponse
			// @Failure 404 {object} ErrorResponse
			// @Router /export/status/{exportId} [get]
			exports.GET("/status/:exportId", h.GetExportStatus)

			// @Summary Download an export file
			// @Tags export
			// @Produce text/csv
			// @Param filename path string true "Export file name"
			// @Success 200 {file} file
			// @Failure 404 {object} ErrorResponse
			// @Router /export/download/{filename} [get]
			exports.GET("/download/:filename", h.DownloadExport)

			// @Summary Delete old export files
			// @Tags export
			// @Produce json
			// @Param maxAge query int false "Maximum file age in milliseconds" default(86400000)
			// @Success 200 {object} Response
			// @Failure 400 {object} ErrorResponse
			// @Router /export/cleanup [post]
			exports.POST("/cleanup", h.CleanupExports)
		}

		gh := v1.Group("/github")
		{
			// @Summary List releases
			// @Description Releases of every configured repository
			// @Tags github
			// @Produce json
			// @Success 200 {object} ReleaseListResponse
			// @Failure 401 {object} ErrorResponse
			// @Failure 429 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /github/releases [get]
			gh.GET("/releases", h.GetReleases)

			// @Summary Fetch releases
			// @Description Loads releases into the cache and returns their count
			// @Tags github
			// @Produce json
			// @Success 200 {object} Response
			// @Failure 500 {object} ErrorResponse
			// @Router /github/releases/fetch [post]
			gh.POST("/releases/fetch", h.FetchReleases)

			// @Summary Get release statistics
			// @Description Compares each release of a repository with its predecessor
			// @Tags github
			// @Produce json
			// @Param repository query string true "owner/name, or a bare name under the default owner" example("daangn/stackflow")
			// @Param startDate query string false "Inclusive lower bound" example("2024-01-01")
			// @Param endDate query string false "Inclusive upper bound" example("2024-03-31")
			// @Success 200 {object} ReleaseStatsResponse
			// @Failure 400 {object} ErrorResponse
			// @Failure 401 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 429 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /github/releases/stats [get]
			gh.GET("/releases/stats", h.GetReleaseStats)

			// @Summary Clear GitHub caches
			// @Tags github
			// @Produce json
			// @Success 200 {object} Response
			// @Router /github/cache/clear [post]
			gh.POST("/cache/clear", h.ClearGitHubCache)
		}

		csv := v1.Group("/csv")
		{
			// @Summary Generate all statistics files
			// @Tags csv
			// @Produce json
			// @Success 200 {object} Response
			// @Failure 500 {object} ErrorResponse
			// @Router /csv/generate-all [post]
			csv.POST("/generate-all", h.GenerateAllCSV)

			// @Summary Generate one statistics file
			// @Tags csv
			// @Produce json
			// @Param type path string true "Report type" Enums(all-releases, yearly-statistics, monthly-statistics, weekly-statistics, daily-statistics, comparison-statistics, working-days-between-releases)
			// @Success 200 {object} Response
			// @Failure 400 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /csv/generate/{type} [post]
			csv.POST("/generate/:type", h.GenerateCSV)

			// @Summary Get release statistics
			// @Tags csv
			// @Produce json
			// @Success 200 {object} StatisticsResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /csv/statistics [get]
			csv.GET("/statistics", h.GetStatistics)
		}
	}

	return r
}

// RequestLogger logs every request through logrus
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("Handled request")
	}
}
