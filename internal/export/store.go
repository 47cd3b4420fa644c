package export

import (
	"errors"
	"sync"
	"time"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// ErrJobFinished is returned when a transition targets a completed or failed job
var ErrJobFinished = errors.New("export job already finished")

// ErrJobNotFound is returned when the job id is unknown
var ErrJobNotFound = errors.New("export job not found")

// Store holds export job records in memory
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewStore creates an empty job store
func NewStore() *Store {
	return &Store{jobs: make(map[string]*models.ExportJob)}
}

// Add records a new job
func (s *Store) Add(job *models.ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a copy of the job
func (s *Store) Get(id string) (models.ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.ExportJob{}, false
	}
	return *job, true
}

// Delete removes a job record
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// Len returns the number of job records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Advance moves a job to status with at least the given progress. Progress
// never decreases.
func (s *Store) Advance(id string, status models.ExportStatus, progress int, at time.Time) error {
	return s.update(id, func(job *models.ExportJob) {
		job.Status = status
		if progress > job.Progress {
			job.Progress = progress
		}
		job.LastUpdateTime = at
	})
}

// Complete marks a job completed with its artifact
func (s *Store) Complete(id, fileName, downloadURL string, at time.Time) error {
	return s.update(id, func(job *models.ExportJob) {
		job.Status = models.ExportCompleted
		job.Progress = 100
		job.ETA = 0
		job.FileName = fileName
		job.DownloadURL = downloadURL
		job.LastUpdateTime = at
		job.FinishedAt = at
	})
}

// Fail marks a job failed and keeps its last progress
func (s *Store) Fail(id, message string, at time.Time) error {
	return s.update(id, func(job *models.ExportJob) {
		job.Status = models.ExportFailed
		job.Error = message
		job.ETA = 0
		job.LastUpdateTime = at
		job.FinishedAt = at
	})
}

// Prune removes finished jobs whose FinishedAt is before cutoff
func (s *Store) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (s *Store) update(id string, fn func(job *models.ExportJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status.Terminal() {
		return ErrJobFinished
	}
	fn(job)
	return nil
}
