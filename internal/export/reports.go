package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/stats"
)

// Report types accepted by ReportGenerator.Generate
const (
	ReportAllReleases    = "all-releases"
	ReportYearly         = "yearly-statistics"
	ReportMonthly        = "monthly-statistics"
	ReportWeekly         = "weekly-statistics"
	ReportDaily          = "daily-statistics"
	ReportComparison     = "comparison-statistics"
	ReportWorkingDaysGap = "working-days-between-releases"
)

// reportOrder is the order GenerateAll writes files in
var reportOrder = []string{
	ReportAllReleases,
	ReportYearly,
	ReportMonthly,
	ReportWeekly,
	ReportDaily,
	ReportComparison,
	ReportWorkingDaysGap,
}

var reportFiles = map[string]string{
	ReportAllReleases:    "all_releases",
	ReportYearly:         "yearly_statistics",
	ReportMonthly:        "monthly_statistics",
	ReportWeekly:         "weekly_statistics",
	ReportDaily:          "daily_statistics",
	ReportComparison:     "comparison_statistics",
	ReportWorkingDaysGap: "working_days_between_releases",
}

// ReportGenerator writes the release statistics CSV files
type ReportGenerator struct {
	dir       string
	primary   string
	secondary string
}

// NewReportGenerator writes into dir and compares primary with secondary
func NewReportGenerator(dir, primary, secondary string) *ReportGenerator {
	return &ReportGenerator{dir: dir, primary: primary, secondary: secondary}
}

// ReportTypes lists every supported report type
func ReportTypes() []string {
	return append([]string(nil), reportOrder...)
}

// GenerateAll writes every report and returns the file path per report type
func (g *ReportGenerator) GenerateAll(releases []models.Release) (map[string]string, error) {
	files := make(map[string]string, len(reportOrder))
	for _, kind := range reportOrder {
		path, err := g.Generate(kind, releases)
		if err != nil {
			return nil, err
		}
		files[kind] = path
	}
	return files, nil
}

// Generate writes one report and returns its path
func (g *ReportGenerator) Generate(kind string, releases []models.Release) (string, error) {
	base, ok := reportFiles[kind]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("Type '%s' is not supported", kind), nil)
	}

	header, records := g.build(kind, releases)
	path := filepath.Join(g.dir, base+".csv")
	if err := writeCSV(path, header, records); err != nil {
		return "", apperrors.NewInternalError("failed to write "+base+".csv", err)
	}
	return path, nil
}

func (g *ReportGenerator) build(kind string, releases []models.Release) ([]string, [][]string) {
	switch kind {
	case ReportAllReleases:
		return allReleasesReport(releases)
	case ReportYearly:
		rows := stats.YearlyStatistics(releases)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Repository, itoa(s.Year), itoa(s.ReleaseCount), itoa(s.WorkingDayCount)})
		}
		return []string{"repository", "year", "release_count", "working_day_count"}, records
	case ReportMonthly:
		rows := stats.MonthlyStatistics(releases)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Repository, itoa(s.Year), itoa(s.Month), itoa(s.ReleaseCount), itoa(s.WorkingDayCount)})
		}
		return []string{"repository", "year", "month", "release_count", "working_day_count"}, records
	case ReportWeekly:
		rows := stats.WeeklyStatistics(releases)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Repository, itoa(s.Year), itoa(s.Week), itoa(s.ReleaseCount), itoa(s.WorkingDayCount)})
		}
		return []string{"repository", "year", "week", "release_count", "working_day_count"}, records
	case ReportDaily:
		rows := stats.DailyStatistics(releases)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Repository, s.Date, itoa(s.ReleaseCount), strconv.FormatBool(s.IsWorkingDay)})
		}
		return []string{"repository", "date", "release_count", "is_working_day"}, records
	case ReportComparison:
		rows := stats.ComparisonStatistics(releases, g.primary, g.secondary)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Metric, ftoa(s.PrimaryValue), ftoa(s.SecondaryValue), ftoa(s.Difference), ftoa(s.PercentageDifference)})
		}
		return []string{"metric", valueColumn(g.primary), valueColumn(g.secondary), "difference", "percentage_difference"}, records
	default:
		rows := stats.WorkingDaysBetweenReleases(releases)
		records := make([][]string, 0, len(rows))
		for _, s := range rows {
			records = append(records, []string{s.Repository, s.ReleaseTag, itoa(s.WorkingDaysSincePreviousRelease)})
		}
		return []string{"repository", "release_tag", "working_days_since_previous_release"}, records
	}
}

func allReleasesReport(releases []models.Release) ([]string, [][]string) {
	records := make([][]string, 0, len(releases))
	for _, r := range releases {
		records = append(records, []string{
			r.Repository,
			r.TagName,
			r.Name,
			r.PublishedAt.Format(time.RFC3339),
			r.CreatedAt.Format(time.RFC3339),
			r.Author,
			strconv.FormatBool(r.IsWorkingDay()),
		})
	}
	return []string{"repository", "tag_name", "name", "published_at", "created_at", "author", "is_working_day"}, records
}

// valueColumn names a comparison column after the repository, e.g.
// "daangn/seed-design" becomes "seed_design_value"
func valueColumn(repository string) string {
	name := repository
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "-", "_") + "_value"
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
