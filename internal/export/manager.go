package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kamar-Folarin/release-dashboard/internal/batch"
	"github.com/Kamar-Folarin/release-dashboard/internal/config"
	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
	"github.com/Kamar-Folarin/release-dashboard/internal/github"
	"github.com/Kamar-Folarin/release-dashboard/internal/metrics"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// InitialETA is reported until the first progress based estimate exists
const InitialETA = 30 * time.Second

// Progress milestones of an export job
const (
	progressStarted          = 10
	progressReleasesFetched  = 30
	progressDashboardReady   = 50
	progressTimeSeriesRows   = 70
	progressBreakdownRows    = 80
	progressCompleted        = 100
	defaultCleanupMaxAge     = 24 * time.Hour
	exportFilePrefix         = "dashboard-export-"
	exportFileTimestampShape = "2006-01-02T15-04-05"
)

// DashboardGenerator builds dashboard data for a release set
type DashboardGenerator interface {
	GenerateFromReleases(ctx context.Context, releases []models.Release, params models.DashboardFilterParams) (*models.DashboardData, error)
}

// Pool runs export jobs in the background
type Pool interface {
	Submit(task batch.Task) error
	Shutdown(ctx context.Context) error
}

// Manager owns export jobs from creation to the finished artifact
type Manager struct {
	dir            string
	downloadPrefix string
	source         github.ReleaseSource
	dashboards     DashboardGenerator
	pool           Pool
	store          *Store
	logger         *logrus.Logger
	now            func() time.Time
}

// NewManager creates the export directory and returns a manager writing into it
func NewManager(cfg *config.ExportConfig, source github.ReleaseSource, dashboards DashboardGenerator, pool Pool, logger *logrus.Logger) (*Manager, error) {
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	prefix := cfg.DownloadPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Manager{
		dir:            dir,
		downloadPrefix: prefix,
		source:         source,
		dashboards:     dashboards,
		pool:           pool,
		store:          NewStore(),
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Create records a pending job, queues it and returns without waiting
func (m *Manager) Create(params models.DashboardFilterParams, options models.ExportOptions) (models.ExportData, error) {
	now := m.now()
	job := &models.ExportJob{
		ProgressTracking: models.ProgressTracking{
			StartTime:      now,
			LastUpdateTime: now,
		},
		ID:     uuid.NewString(),
		Status: models.ExportPending,
		Params: models.ExportRequestParams{
			DashboardFilterParams: params,
			ExportOptions:         options,
		},
		ETA: InitialETA,
	}
	view := job.View()
	m.store.Add(job)
	metrics.ExportJobsInFlight.Inc()

	id := job.ID
	err := m.pool.Submit(batch.Task{
		ID:     id,
		Run:    func(ctx context.Context) error { return m.process(ctx, id) },
		OnDone: func(err error) { m.finish(id, err) },
	})
	if err != nil {
		m.store.Delete(id)
		metrics.ExportJobsInFlight.Dec()
		return models.ExportData{}, apperrors.NewInternalError("failed to queue export job", err)
	}

	m.logger.WithFields(logrus.Fields{
		"export_id": id,
		"timeframe": params.Timeframe,
	}).Info("Created export job")
	return view, nil
}

// Status returns the client view of a job. While the job is processing the
// remaining time is extrapolated from elapsed time and progress on every call.
// The stored job is not modified.
func (m *Manager) Status(id string) (models.ExportData, bool) {
	job, ok := m.store.Get(id)
	if !ok {
		return models.ExportData{}, false
	}

	if job.Status == models.ExportProcessing && job.Progress > 0 {
		elapsed := m.now().Sub(job.StartTime)
		total := time.Duration(float64(elapsed) * 100 / float64(job.Progress))
		eta := total - elapsed
		if eta < 0 {
			eta = 0
		}
		job.ETA = eta
	}
	return job.View(), true
}

// FilePath resolves a download name to a regular file inside the export
// directory
func (m *Manager) FilePath(filename string) (string, error) {
	notFound := apperrors.NewResourceNotFoundError("export file", filename)
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.HasPrefix(filename, ".") ||
		filepath.IsAbs(filename) || filepath.Base(filename) != filename {
		return "", notFound
	}

	path := filepath.Join(m.dir, filename)
	if filepath.Dir(path) != m.dir {
		return "", notFound
	}
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", notFound
	}
	return path, nil
}

// Cleanup deletes export files older than maxAge and returns how many were
// removed. A non-positive maxAge uses 24 hours. Job records are untouched.
func (m *Manager) Cleanup(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = defaultCleanupMaxAge
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read export directory", err)
	}

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
			m.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove export file")
			continue
		}
		removed++
	}

	m.logger.WithFields(logrus.Fields{
		"removed": removed,
		"max_age": maxAge.String(),
	}).Info("Cleaned up export files")
	return removed, nil
}

// PruneJobs forgets finished jobs older than maxAge and returns how many were
// removed
func (m *Manager) PruneJobs(maxAge time.Duration) int {
	removed := m.store.Prune(m.now().Add(-maxAge))
	if removed > 0 {
		m.logger.WithField("removed", removed).Info("Pruned finished export jobs")
	}
	return removed
}

// Shutdown waits for queued and running jobs
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.pool.Shutdown(ctx)
}

func (m *Manager) process(ctx context.Context, id string) error {
	job, ok := m.store.Get(id)
	if !ok {
		return ErrJobNotFound
	}
	logger := m.logger.WithField("export_id", id)
	options := job.Params.ExportOptions

	if err := m.advance(id, progressStarted); err != nil {
		return err
	}

	releases, err := m.source.FetchAllReleases(ctx)
	if err != nil {
		return err
	}
	if err := m.advance(id, progressReleasesFetched); err != nil {
		return err
	}

	data, err := m.dashboards.GenerateFromReleases(ctx, releases, job.Params.DashboardFilterParams)
	if err != nil {
		return err
	}
	if err := m.advance(id, progressDashboardReady); err != nil {
		return err
	}

	var rows []Row
	if options.IncludeTimeSeriesData {
		rows = append(rows, TimeSeriesRows(data)...)
	}
	if err := m.advance(id, progressTimeSeriesRows); err != nil {
		return err
	}

	if options.IncludeRepositoryBreakdown {
		rows = append(rows, RepositoryRows(data)...)
	}
	if options.IncludeReleaseTypeBreakdown {
		rows = append(rows, ReleaseTypeRows(data)...)
	}
	if err := m.advance(id, progressBreakdownRows); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	now := m.now()
	name := exportFileName(now, id)
	if err := WriteDashboardCSV(filepath.Join(m.dir, name), rows); err != nil {
		return err
	}
	if err := m.store.Complete(id, name, m.downloadPrefix+name, now); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"file": name,
		"rows": len(rows),
	}).Info("Export job completed")
	return nil
}

func (m *Manager) advance(id string, progress int) error {
	return m.store.Advance(id, models.ExportProcessing, progress, m.now())
}

func (m *Manager) finish(id string, err error) {
	metrics.ExportJobsInFlight.Dec()
	if err == nil {
		metrics.ExportJobsTotal.WithLabelValues(string(models.ExportCompleted)).Inc()
		return
	}

	metrics.ExportJobsTotal.WithLabelValues(string(models.ExportFailed)).Inc()
	if failErr := m.store.Fail(id, err.Error(), m.now()); failErr != nil {
		m.logger.WithError(failErr).WithField("export_id", id).Warn("Could not mark export job failed")
		return
	}
	m.logger.WithError(err).WithField("export_id", id).Error("Export job failed")
}

// exportFileName is unique per job and sorts by creation time
func exportFileName(at time.Time, id string) string {
	at = at.UTC()
	stamp := fmt.Sprintf("%s-%03dZ", at.Format(exportFileTimestampShape), at.Nanosecond()/int(time.Millisecond))
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return exportFilePrefix + stamp + "-" + short + ".csv"
}
