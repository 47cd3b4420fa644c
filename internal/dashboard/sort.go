package dashboard

import (
	"sort"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// Fields accepted by the sort parameter
const (
	SortByDate             = "date"
	SortByName             = "name"
	SortByReleaseCount     = "releaseCount"
	SortByCommitCount      = "commitCount"
	SortByContributorCount = "contributorCount"
)

// ValidSortField reports whether field orders at least one collection
func ValidSortField(field string) bool {
	switch field {
	case SortByDate, SortByName, SortByReleaseCount, SortByCommitCount, SortByContributorCount:
		return true
	}
	return false
}

// applySort reorders the time series and top repositories in place. Fields a
// collection has no notion of leave it in its default order.
func applySort(data *models.DashboardData, spec *models.SortSpec) {
	if spec == nil || spec.Field == "" {
		return
	}
	desc := spec.Direction == "desc"

	var seriesKey func(p models.TimeSeriesDataPoint) (int, string)
	switch spec.Field {
	case SortByDate:
		seriesKey = func(p models.TimeSeriesDataPoint) (int, string) { return 0, p.Date }
	case SortByReleaseCount:
		seriesKey = func(p models.TimeSeriesDataPoint) (int, string) { return p.ReleaseCount, "" }
	case SortByCommitCount:
		seriesKey = func(p models.TimeSeriesDataPoint) (int, string) { return p.CommitCount, "" }
	case SortByContributorCount:
		seriesKey = func(p models.TimeSeriesDataPoint) (int, string) { return p.ContributorCount, "" }
	}
	if seriesKey != nil {
		points := data.TimeSeriesData
		sort.SliceStable(points, func(i, j int) bool {
			ni, si := seriesKey(points[i])
			nj, sj := seriesKey(points[j])
			return less(ni, si, nj, sj, desc)
		})
	}

	var repoKey func(r models.TopRepository) (int, string)
	switch spec.Field {
	case SortByName:
		repoKey = func(r models.TopRepository) (int, string) { return 0, r.Name }
	case SortByReleaseCount:
		repoKey = func(r models.TopRepository) (int, string) { return r.ReleaseCount, "" }
	case SortByCommitCount:
		repoKey = func(r models.TopRepository) (int, string) { return r.CommitCount, "" }
	}
	if repoKey != nil {
		repos := data.TopRepositories
		sort.SliceStable(repos, func(i, j int) bool {
			ni, si := repoKey(repos[i])
			nj, sj := repoKey(repos[j])
			return less(ni, si, nj, sj, desc)
		})
	}
}

func less(ni int, si string, nj int, sj string, desc bool) bool {
	if ni == nj && si == sj {
		return false
	}
	var asc bool
	if ni != nj {
		asc = ni < nj
	} else {
		asc = si < sj
	}
	if desc {
		return !asc
	}
	return asc
}
