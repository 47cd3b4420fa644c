// Package dashboard assembles dashboard payloads from cached release data.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Kamar-Folarin/release-dashboard/internal/github"
	"github.com/Kamar-Folarin/release-dashboard/internal/metrics"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/stats"
	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

const (
	// DefaultCacheTTL is how long a generated dashboard is served from cache
	DefaultCacheTTL = 5 * time.Minute

	recentReleaseLimit  = 5
	topContributorLimit = 10
	statsConcurrency    = 4
)

// Service generates dashboard data and caches it per filter set
type Service struct {
	source github.ReleaseSource
	cache  *cache.Cache
	group  singleflight.Group
	logger *logrus.Logger
}

// NewService creates a dashboard service. A non-positive ttl uses DefaultCacheTTL.
func NewService(source github.ReleaseSource, ttl time.Duration, logger *logrus.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// GetDashboardData returns the dashboard for params, generating it at most
// once per TTL window and filter set
func (s *Service) GetDashboardData(ctx context.Context, params models.DashboardFilterParams) (*models.DashboardData, error) {
	key := params.CacheKey()
	if cached, ok := s.cache.Get(key); ok {
		metrics.ObserveCache("dashboard", true)
		return cached.(*models.DashboardData), nil
	}
	metrics.ObserveCache("dashboard", false)

	v, err := github.SharedDo(ctx, &s.group, key, func(ctx context.Context) (interface{}, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		releases, err := s.source.FetchAllReleases(ctx)
		if err != nil {
			return nil, err
		}
		data, err := s.GenerateFromReleases(ctx, releases, params)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DashboardData), nil
}

// ClearCache drops every cached dashboard
func (s *Service) ClearCache() {
	s.cache.Flush()
	s.logger.Info("Cleared dashboard cache")
}

// comparisonRecord is the comparison of one release with its predecessor
type comparisonRecord struct {
	repository  string
	tag         string
	publishedAt time.Time
	comparison  models.ReleaseComparison
}

func recordKey(repository, tag string) string {
	return repository + "@" + tag
}

// GenerateFromReleases builds the dashboard for the given release set without
// consulting the result cache
func (s *Service) GenerateFromReleases(ctx context.Context, releases []models.Release, params models.DashboardFilterParams) (*models.DashboardData, error) {
	started := time.Now()
	defer func() {
		metrics.DashboardGenerationDuration.Observe(time.Since(started).Seconds())
	}()

	if params.Timeframe == "" {
		params.Timeframe = models.TimeframeDaily
	}

	filtered := FilterReleases(releases, params)
	records, err := s.collectComparisons(ctx, filtered, params)
	if err != nil {
		return nil, err
	}

	data := &models.DashboardData{
		TimeSeriesData:       timeSeries(filtered, records, params.Timeframe),
		SummaryStats:         summary(filtered, records),
		TopRepositories:      topRepositories(filtered, records),
		ReleaseTypeBreakdown: releaseTypes(filtered),
	}
	applySort(data, params.Sort)

	s.logger.WithFields(logrus.Fields{
		"timeframe":   params.Timeframe,
		"releases":    len(filtered),
		"comparisons": len(records),
	}).Debug("Generated dashboard data")
	return data, nil
}

// FilterReleases narrows releases by inclusive date bounds, repository and
// release type. An empty allow-list does not filter.
func FilterReleases(releases []models.Release, params models.DashboardFilterParams) []models.Release {
	repos := toSet(params.Filters.Repository)
	types := toSet(params.Filters.ReleaseType)

	out := make([]models.Release, 0, len(releases))
	for _, r := range releases {
		if params.StartDate != nil && r.PublishedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && r.PublishedAt.After(*params.EndDate) {
			continue
		}
		if len(repos) > 0 && !repos[r.Repository] {
			continue
		}
		if len(types) > 0 && !types[r.Type()] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// collectComparisons loads per-repository comparison stats for the filtered
// releases. Repositories whose stats cannot be loaded are skipped.
func (s *Service) collectComparisons(ctx context.Context, filtered []models.Release, params models.DashboardFilterParams) ([]comparisonRecord, error) {
	var repos []string
	wanted := make(map[string]bool, len(filtered))
	for _, r := range filtered {
		if !wanted[recordKey(r.Repository, "")] {
			wanted[recordKey(r.Repository, "")] = true
			repos = append(repos, r.Repository)
		}
		wanted[recordKey(r.Repository, r.TagName)] = true
	}

	results := make([]*models.RepositoryReleaseStats, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			repoStats, err := s.source.FetchRepositoryReleaseStats(gctx, repo, params.StartDate, params.EndDate)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.WithError(err).WithField("repository", repo).Warn("Comparison stats unavailable, skipping repository")
				return nil
			}
			results[i] = repoStats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []comparisonRecord
	for _, repoStats := range results {
		if repoStats == nil {
			continue
		}
		for _, r := range repoStats.Releases {
			key := recordKey(repoStats.Repository, r.TagName)
			if !wanted[key] || seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, comparisonRecord{
				repository:  repoStats.Repository,
				tag:         r.TagName,
				publishedAt: r.PublishedAt,
				comparison:  r.CompareWithPrevious,
			})
		}
	}
	return records, nil
}

func timeSeries(releases []models.Release, records []comparisonRecord, timeframe models.Timeframe) []models.TimeSeriesDataPoint {
	var points []models.TimeSeriesDataPoint
	switch timeframe {
	case models.TimeframeWeekly:
		for _, stat := range stats.WeeklyStatistics(releases) {
			points = append(points, models.TimeSeriesDataPoint{
				Date:         fmt.Sprintf("%04d-W%02d", stat.Year, stat.Week),
				Repository:   stat.Repository,
				ReleaseCount: stat.ReleaseCount,
			})
		}
	case models.TimeframeMonthly:
		for _, stat := range stats.MonthlyStatistics(releases) {
			points = append(points, models.TimeSeriesDataPoint{
				Date:         fmt.Sprintf("%04d-%02d", stat.Year, stat.Month),
				Repository:   stat.Repository,
				ReleaseCount: stat.ReleaseCount,
			})
		}
	default:
		timeframe = models.TimeframeDaily
		for _, stat := range stats.DailyStatistics(releases) {
			points = append(points, models.TimeSeriesDataPoint{
				Date:         stat.Date,
				Repository:   stat.Repository,
				ReleaseCount: stat.ReleaseCount,
			})
		}
	}

	index := make(map[string]int, len(points))
	for i, p := range points {
		index[p.Repository+"|"+p.Date] = i
	}

	contributors := make(map[int]map[string]bool)
	for _, rec := range records {
		i, ok := index[rec.repository+"|"+utils.PeriodKey(rec.publishedAt, string(timeframe))]
		if !ok {
			continue
		}
		points[i].CommitCount += rec.comparison.TotalCommits
		if contributors[i] == nil {
			contributors[i] = make(map[string]bool)
		}
		for _, a := range rec.comparison.AuthorStats {
			contributors[i][a.Author] = true
		}
	}
	for i, set := range contributors {
		points[i].ContributorCount = len(set)
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Repository < points[j].Repository
	})
	if points == nil {
		points = []models.TimeSeriesDataPoint{}
	}
	return points
}

func summary(releases []models.Release, records []comparisonRecord) models.SummaryStats {
	out := models.SummaryStats{
		TotalReleases:        len(releases),
		AverageTimeToRelease: stats.AverageWorkingDayGap(stats.WorkingDaysBetweenReleases(releases)),
		RecentReleases:       []models.RecentRelease{},
		TopContributors:      []models.TopContributor{},
	}

	byRelease := make(map[string]models.ReleaseComparison, len(records))
	authorLists := make([][]models.AuthorStat, 0, len(records))
	for _, rec := range records {
		out.TotalCommits += rec.comparison.TotalCommits
		out.TotalAdditions += rec.comparison.TotalAdditions
		out.TotalDeletions += rec.comparison.TotalDeletions
		out.TotalFilesChanged += rec.comparison.TotalFilesChanged
		byRelease[recordKey(rec.repository, rec.tag)] = rec.comparison
		authorLists = append(authorLists, rec.comparison.AuthorStats)
	}
	if len(records) > 0 {
		out.AverageCommitsPerRelease = float64(out.TotalCommits) / float64(len(records))
	}

	recent := append([]models.Release(nil), releases...)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].PublishedAt.Equal(recent[j].PublishedAt) {
			return recent[i].PublishedAt.After(recent[j].PublishedAt)
		}
		return recent[i].TagName > recent[j].TagName
	})
	if len(recent) > recentReleaseLimit {
		recent = recent[:recentReleaseLimit]
	}
	for _, r := range recent {
		cmp := byRelease[recordKey(r.Repository, r.TagName)]
		out.RecentReleases = append(out.RecentReleases, models.RecentRelease{
			Repository:   r.Repository,
			TagName:      r.TagName,
			Name:         r.Name,
			PublishedAt:  r.PublishedAt,
			CommitCount:  cmp.TotalCommits,
			Additions:    cmp.TotalAdditions,
			Deletions:    cmp.TotalDeletions,
			FilesChanged: cmp.TotalFilesChanged,
		})
	}

	authors := stats.AggregateAuthorStats(authorLists...)
	out.TotalContributors = len(authors)
	contributorCommits := 0
	for _, a := range authors {
		contributorCommits += a.Commits
	}
	if len(authors) > topContributorLimit {
		authors = authors[:topContributorLimit]
	}
	for _, a := range authors {
		pct := 0.0
		if contributorCommits > 0 {
			pct = float64(a.Commits) / float64(contributorCommits) * 100
		}
		out.TopContributors = append(out.TopContributors, models.TopContributor{
			Author:                 a.Author,
			Commits:                a.Commits,
			Additions:              a.Additions,
			Deletions:              a.Deletions,
			FilesChanged:           a.FilesChanged,
			ContributionPercentage: pct,
		})
	}

	return out
}

func topRepositories(releases []models.Release, records []comparisonRecord) []models.TopRepository {
	commits := make(map[string]int)
	for _, rec := range records {
		commits[rec.repository] += rec.comparison.TotalCommits
	}

	index := make(map[string]int)
	out := make([]models.TopRepository, 0)
	for _, r := range releases {
		i, ok := index[r.Repository]
		if !ok {
			i = len(out)
			index[r.Repository] = i
			out = append(out, models.TopRepository{Name: r.Repository, CommitCount: commits[r.Repository]})
		}
		out[i].ReleaseCount++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleaseCount > out[j].ReleaseCount
	})
	return out
}

func releaseTypes(releases []models.Release) []models.ReleaseTypeBreakdown {
	counts := map[string]int{}
	for _, r := range releases {
		counts[r.Type()]++
	}

	out := make([]models.ReleaseTypeBreakdown, 0, 3)
	for _, t := range []string{models.ReleaseTypeRegular, models.ReleaseTypePrerelease, models.ReleaseTypeDraft} {
		if t != models.ReleaseTypeRegular && counts[t] == 0 {
			continue
		}
		pct := 0.0
		if len(releases) > 0 {
			pct = float64(counts[t]) / float64(len(releases)) * 100
		}
		out = append(out, models.ReleaseTypeBreakdown{Type: t, Count: counts[t], Percentage: pct})
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
