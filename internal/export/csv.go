// Package export runs asynchronous dashboard CSV exports and writes the
// statistics report files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// Section names of the dashboard export
const (
	SectionTimeSeries  = "Time Series"
	SectionRepository  = "Repository Breakdown"
	SectionReleaseType = "Release Type Breakdown"
)

var dashboardHeader = []string{
	"Section", "Date", "Repository", "Type",
	"Release Count", "Commit Count", "Contributor Count", "Percentage",
}

// Row is one line of the dashboard export. Nil fields are written as empty cells.
type Row struct {
	Section          string
	Date             string
	Repository       string
	Type             string
	ReleaseCount     *int
	CommitCount      *int
	ContributorCount *int
	Percentage       *float64
}

func (r Row) record() []string {
	return []string{
		r.Section, r.Date, r.Repository, r.Type,
		formatInt(r.ReleaseCount), formatInt(r.CommitCount), formatInt(r.ContributorCount),
		formatFloat(r.Percentage),
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// TimeSeriesRows converts the dashboard time series into export rows
func TimeSeriesRows(data *models.DashboardData) []Row {
	rows := make([]Row, 0, len(data.TimeSeriesData))
	for _, p := range data.TimeSeriesData {
		rows = append(rows, Row{
			Section:          SectionTimeSeries,
			Date:             p.Date,
			Repository:       p.Repository,
			ReleaseCount:     intPtr(p.ReleaseCount),
			CommitCount:      intPtr(p.CommitCount),
			ContributorCount: intPtr(p.ContributorCount),
		})
	}
	return rows
}

// RepositoryRows converts the top repositories into export rows
func RepositoryRows(data *models.DashboardData) []Row {
	rows := make([]Row, 0, len(data.TopRepositories))
	for _, r := range data.TopRepositories {
		rows = append(rows, Row{
			Section:      SectionRepository,
			Repository:   r.Name,
			ReleaseCount: intPtr(r.ReleaseCount),
			CommitCount:  intPtr(r.CommitCount),
		})
	}
	return rows
}

// ReleaseTypeRows converts the release type breakdown into export rows
func ReleaseTypeRows(data *models.DashboardData) []Row {
	rows := make([]Row, 0, len(data.ReleaseTypeBreakdown))
	for _, b := range data.ReleaseTypeBreakdown {
		rows = append(rows, Row{
			Section:      SectionReleaseType,
			Type:         b.Type,
			ReleaseCount: intPtr(b.Count),
			Percentage:   floatPtr(b.Percentage),
		})
	}
	return rows
}

// WriteDashboardCSV writes the header and rows to path
func WriteDashboardCSV(path string, rows []Row) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return writeCSV(path, dashboardHeader, records)
}

// writeCSV writes into a temporary file in the target directory and renames
// it into place, so readers never observe a partial file.
func writeCSV(path string, header []string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move csv into place: %w", err)
	}
	return nil
}
