// Package stats turns flat release lists into calendar rollups and
// inter-release metrics. Every function is pure and total.
package stats

import (
	"fmt"
	"sort"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

// Comparison metric names
const (
	MetricTotalReleases       = "total_releases"
	MetricAvgReleasesPerMonth = "avg_releases_per_month"
	MetricMaxReleasesInMonth  = "max_releases_in_month"
)

// YearlyStatistics buckets releases per repository and calendar year
func YearlyStatistics(releases []models.Release) []models.YearlyStatistic {
	index := make(map[string]int)
	out := make([]models.YearlyStatistic, 0)
	for _, r := range releases {
		key := fmt.Sprintf("%s|%d", r.Repository, r.Year())
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.YearlyStatistic{Repository: r.Repository, Year: r.Year()})
		}
		out[i].ReleaseCount++
		if r.IsWorkingDay() {
			out[i].WorkingDayCount++
		}
	}
	return out
}

// MonthlyStatistics buckets releases per repository and calendar month
func MonthlyStatistics(releases []models.Release) []models.MonthlyStatistic {
	index := make(map[string]int)
	out := make([]models.MonthlyStatistic, 0)
	for _, r := range releases {
		key := fmt.Sprintf("%s|%d|%d", r.Repository, r.Year(), r.Month())
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.MonthlyStatistic{Repository: r.Repository, Year: r.Year(), Month: r.Month()})
		}
		out[i].ReleaseCount++
		if r.IsWorkingDay() {
			out[i].WorkingDayCount++
		}
	}
	return out
}

// WeeklyStatistics buckets releases per repository and ISO week
func WeeklyStatistics(releases []models.Release) []models.WeeklyStatistic {
	index := make(map[string]int)
	out := make([]models.WeeklyStatistic, 0)
	for _, r := range releases {
		year, week := r.ISOWeek()
		key := fmt.Sprintf("%s|%d|%d", r.Repository, year, week)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.WeeklyStatistic{Repository: r.Repository, Year: year, Week: week})
		}
		out[i].ReleaseCount++
		if r.IsWorkingDay() {
			out[i].WorkingDayCount++
		}
	}
	return out
}

// DailyStatistics buckets releases per repository and calendar day
func DailyStatistics(releases []models.Release) []models.DailyStatistic {
	index := make(map[string]int)
	out := make([]models.DailyStatistic, 0)
	for _, r := range releases {
		date := r.Date()
		key := r.Repository + "|" + date
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.DailyStatistic{
				Repository:   r.Repository,
				Date:         date,
				IsWorkingDay: r.IsWorkingDay(),
			})
		}
		out[i].ReleaseCount++
	}
	return out
}

// ComparisonStatistics compares release cadence of two repositories.
// Percentage differences are relative to the secondary repository.
func ComparisonStatistics(releases []models.Release, primary, secondary string) []models.ComparisonStatistic {
	var primaryReleases, secondaryReleases []models.Release
	for _, r := range releases {
		switch r.Repository {
		case primary:
			primaryReleases = append(primaryReleases, r)
		case secondary:
			secondaryReleases = append(secondaryReleases, r)
		}
	}

	primaryMonths := MonthlyStatistics(primaryReleases)
	secondaryMonths := MonthlyStatistics(secondaryReleases)

	metric := func(name string, p, s float64) models.ComparisonStatistic {
		diff := p - s
		pct := 0.0
		if s != 0 {
			pct = diff / s * 100
		}
		return models.ComparisonStatistic{
			Metric:               name,
			PrimaryRepository:    primary,
			PrimaryValue:         p,
			SecondaryRepository:  secondary,
			SecondaryValue:       s,
			Difference:           diff,
			PercentageDifference: pct,
		}
	}

	return []models.ComparisonStatistic{
		metric(MetricTotalReleases, float64(len(primaryReleases)), float64(len(secondaryReleases))),
		metric(MetricAvgReleasesPerMonth, averagePerMonth(primaryMonths), averagePerMonth(secondaryMonths)),
		metric(MetricMaxReleasesInMonth, float64(maxPerMonth(primaryMonths)), float64(maxPerMonth(secondaryMonths))),
	}
}

func averagePerMonth(months []models.MonthlyStatistic) float64 {
	if len(months) == 0 {
		return 0
	}
	total := 0
	for _, m := range months {
		total += m.ReleaseCount
	}
	return float64(total) / float64(len(months))
}

func maxPerMonth(months []models.MonthlyStatistic) int {
	highest := 0
	for _, m := range months {
		if m.ReleaseCount > highest {
			highest = m.ReleaseCount
		}
	}
	return highest
}

// SortChronological orders releases by publication time, then tag name
func SortChronological(releases []models.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.TagName < b.TagName
	})
}

// WorkingDaysBetweenReleases emits the inclusive working-day gap between each
// release and its predecessor in the same repository. The first release of a
// repository has no predecessor and is skipped.
func WorkingDaysBetweenReleases(releases []models.Release) []models.WorkingDaysBetweenReleases {
	var order []string
	byRepo := make(map[string][]models.Release)
	for _, r := range releases {
		if _, ok := byRepo[r.Repository]; !ok {
			order = append(order, r.Repository)
		}
		byRepo[r.Repository] = append(byRepo[r.Repository], r)
	}

	out := make([]models.WorkingDaysBetweenReleases, 0)
	for _, repo := range order {
		list := byRepo[repo]
		SortChronological(list)
		for i := 1; i < len(list); i++ {
			out = append(out, models.WorkingDaysBetweenReleases{
				Repository:                      repo,
				ReleaseTag:                      list[i].TagName,
				WorkingDaysSincePreviousRelease: utils.WorkingDaysBetween(list[i-1].PublishedAt, list[i].PublishedAt),
			})
		}
	}
	return out
}

// WorkingDayReleaseCount counts releases published Monday through Friday
func WorkingDayReleaseCount(releases []models.Release) int {
	n := 0
	for _, r := range releases {
		if r.IsWorkingDay() {
			n++
		}
	}
	return n
}

// AverageWorkingDayGap is the mean of all working-day gaps, or 0 with no gaps
func AverageWorkingDayGap(gaps []models.WorkingDaysBetweenReleases) float64 {
	if len(gaps) == 0 {
		return 0
	}
	total := 0
	for _, g := range gaps {
		total += g.WorkingDaysSincePreviousRelease
	}
	return float64(total) / float64(len(gaps))
}

// AggregateAuthorStats sums per-author counts across every list and sorts by
// commits descending. Authors with equal commits keep first-encounter order.
func AggregateAuthorStats(lists ...[]models.AuthorStat) []models.AuthorStat {
	index := make(map[string]int)
	out := make([]models.AuthorStat, 0)
	for _, list := range lists {
		for _, s := range list {
			i, ok := index[s.Author]
			if !ok {
				i = len(out)
				index[s.Author] = i
				out = append(out, models.AuthorStat{Author: s.Author})
			}
			out[i].Commits += s.Commits
			out[i].Additions += s.Additions
			out[i].Deletions += s.Deletions
			out[i].FilesChanged += s.FilesChanged
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Commits > out[j].Commits
	})
	return out
}

// All computes every rollup over releases
func All(releases []models.Release, primary, secondary string) models.AllStatistics {
	return models.AllStatistics{
		YearlyStats:                YearlyStatistics(releases),
		MonthlyStats:               MonthlyStatistics(releases),
		WeeklyStats:                WeeklyStatistics(releases),
		DailyStats:                 DailyStatistics(releases),
		ComparisonStats:            ComparisonStatistics(releases, primary, secondary),
		WorkingDaysBetweenReleases: WorkingDaysBetweenReleases(releases),
		WorkingDayReleaseCount:     WorkingDayReleaseCount(releases),
	}
}
