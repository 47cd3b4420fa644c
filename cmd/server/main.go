package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/release-dashboard/internal/api"
	"github.com/Kamar-Folarin/release-dashboard/internal/batch"
	"github.com/Kamar-Folarin/release-dashboard/internal/config"
	"github.com/Kamar-Folarin/release-dashboard/internal/dashboard"
	"github.com/Kamar-Folarin/release-dashboard/internal/export"
	"github.com/Kamar-Folarin/release-dashboard/internal/github"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	// Load configuration with defaults
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN is not set, using the anonymous rate limit")
	}

	// Initialize services
	client, err := github.NewClient(cfg.GitHub, logger,
		github.WithResponseCache(github.NewResponseCache(cfg.ReleaseCacheTTL)))
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}
	releases := github.NewReleaseService(client, cfg.Repositories, cfg.ReleaseCacheTTL, logger)
	dashboards := dashboard.NewService(releases, cfg.DashboardCacheTTL, logger)

	pool := batch.NewPool(cfg.Export.Workers, cfg.Export.QueueSize, cfg.Export.JobTimeout, logger)
	exports, err := export.NewManager(cfg.Export, releases, dashboards, pool, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize exports: %v", err)
	}
	reports := export.NewReportGenerator(cfg.Export.CSVDir, cfg.ComparisonPrimary, cfg.ComparisonSecondary)

	handler := api.NewHandler(releases, dashboards, exports, reports, api.Options{
		DefaultOwner:        cfg.DefaultOwner,
		ComparisonPrimary:   cfg.ComparisonPrimary,
		ComparisonSecondary: cfg.ComparisonSecondary,
	}, logger)
	router := api.SetupRouter(handler, logger)

	// Periodic cleanup of export files and finished job records
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Export.CleanupSchedule, func() {
		removed, err := exports.Cleanup(cfg.Export.MaxAge)
		if err != nil {
			logger.WithError(err).Error("Export cleanup failed")
		}
		pruned := exports.PruneJobs(cfg.Export.JobRetention)
		logger.WithFields(logrus.Fields{
			"files_removed": removed,
			"jobs_pruned":   pruned,
		}).Info("Export cleanup finished")
	}); err != nil {
		logger.Fatalf("Invalid CLEANUP_SCHEDULE %q: %v", cfg.Export.CleanupSchedule, err)
	}
	scheduler.Start()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithField("repositories", cfg.Repositories).Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	<-scheduler.Stop().Done()
	if err := exports.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Export workers did not drain: %v", err)
	}
	logger.Info("Server exited properly")
}
