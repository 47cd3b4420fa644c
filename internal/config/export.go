package config

import "time"

// ExportConfig holds export job and artifact configuration
type ExportConfig struct {
	Dir             string
	CSVDir          string
	DownloadPrefix  string
	Workers         int
	QueueSize       int
	JobTimeout      time.Duration
	CleanupSchedule string
	MaxAge          time.Duration
	JobRetention    time.Duration
}

// DefaultExportConfig returns the default export configuration
func DefaultExportConfig() *ExportConfig {
	return &ExportConfig{
		Dir:             "data/exports",
		CSVDir:          "data/csv",
		DownloadPrefix:  "/api/v1/export/download/",
		Workers:         2,
		QueueSize:       16,
		JobTimeout:      10 * time.Minute,
		CleanupSchedule: "@hourly",
		MaxAge:          24 * time.Hour,
		JobRetention:    24 * time.Hour,
	}
}

func loadExportConfig() (*ExportConfig, error) {
	cfg := DefaultExportConfig()
	cfg.Dir = getEnv("EXPORT_DIR", cfg.Dir)
	cfg.CSVDir = getEnv("CSV_DIR", cfg.CSVDir)
	cfg.CleanupSchedule = getEnv("CLEANUP_SCHEDULE", cfg.CleanupSchedule)

	workers, err := getEnvInt("EXPORT_WORKERS", cfg.Workers)
	if err != nil {
		return nil, err
	}
	cfg.Workers = workers

	queue, err := getEnvInt("EXPORT_QUEUE_SIZE", cfg.QueueSize)
	if err != nil {
		return nil, err
	}
	cfg.QueueSize = queue

	timeout, err := getEnvInt("EXPORT_JOB_TIMEOUT_MINUTES", int(cfg.JobTimeout/time.Minute))
	if err != nil {
		return nil, err
	}
	cfg.JobTimeout = time.Duration(timeout) * time.Minute

	maxAge, err := getEnvInt("EXPORT_MAX_AGE_HOURS", int(cfg.MaxAge/time.Hour))
	if err != nil {
		return nil, err
	}
	cfg.MaxAge = time.Duration(maxAge) * time.Hour
	cfg.JobRetention = cfg.MaxAge

	return cfg, nil
}
