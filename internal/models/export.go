package models

import "time"

// ExportStatus is the lifecycle state of an export job
type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

// Terminal reports whether no further transition is allowed
func (s ExportStatus) Terminal() bool {
	return s == ExportCompleted || s == ExportFailed
}

// ExportOptions selects the sections written to the CSV artifact
type ExportOptions struct {
	IncludeTimeSeriesData       bool `json:"includeTimeSeriesData"`
	IncludeRepositoryBreakdown  bool `json:"includeRepositoryBreakdown"`
	IncludeReleaseTypeBreakdown bool `json:"includeReleaseTypeBreakdown"`
}

// ExportRequestParams is the frozen input of an export job
type ExportRequestParams struct {
	DashboardFilterParams
	ExportOptions ExportOptions `json:"exportOptions"`
}

// ExportJob is the orchestrator-owned record of one export request
type ExportJob struct {
	ProgressTracking
	ID          string              `json:"id"`
	Status      ExportStatus        `json:"status"`
	Params      ExportRequestParams `json:"params"`
	ETA         time.Duration       `json:"-"`
	DownloadURL string              `json:"downloadUrl,omitempty"`
	FileName    string              `json:"-"`
	FinishedAt  time.Time           `json:"finished_at,omitempty"`
}

// ExportData is the client view of an export job
type ExportData struct {
	ExportID string       `json:"exportId"`
	Status   ExportStatus `json:"status"`
	Progress int          `json:"progress"`
	// EstimatedTimeRemaining is in milliseconds.
	EstimatedTimeRemaining int64  `json:"estimatedTimeRemaining"`
	DownloadURL            string `json:"downloadUrl,omitempty"`
	Error                  string `json:"error,omitempty"`
}

// View returns the client view of the job
func (j *ExportJob) View() ExportData {
	return ExportData{
		ExportID:               j.ID,
		Status:                 j.Status,
		Progress:               j.Progress,
		EstimatedTimeRemaining: j.ETA.Milliseconds(),
		DownloadURL:            j.DownloadURL,
		Error:                  j.Error,
	}
}
