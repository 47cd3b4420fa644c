package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

func release(repo, tag string, published string) models.Release {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		panic(err)
	}
	return models.Release{Repository: repo, TagName: tag, Name: "Release " + tag, PublishedAt: t, CreatedAt: t, Author: "test-user"}
}

// Mon 7/3, Wed 7/5, Sat 7/8, Mon 7/10
func testReleases() []models.Release {
	return []models.Release{
		release("test/repo", "v1.0.0", "2023-07-03T12:00:00Z"),
		release("test/repo", "v1.1.0", "2023-07-05T12:00:00Z"),
		release("test/repo", "v1.2.0", "2023-07-08T12:00:00Z"),
		release("test/repo", "v1.3.0", "2023-07-10T12:00:00Z"),
	}
}

func TestYearlyStatistics(t *testing.T) {
	stats := YearlyStatistics(testReleases())
	require.Len(t, stats, 1)
	assert.Equal(t, models.YearlyStatistic{Repository: "test/repo", Year: 2023, ReleaseCount: 4, WorkingDayCount: 3}, stats[0])
}

func TestMonthlyStatistics(t *testing.T) {
	stats := MonthlyStatistics(testReleases())
	require.Len(t, stats, 1)
	assert.Equal(t, 7, stats[0].Month)
	assert.Equal(t, 4, stats[0].ReleaseCount)
	assert.Equal(t, 3, stats[0].WorkingDayCount)
}

func TestWeeklyStatistics(t *testing.T) {
	stats := WeeklyStatistics(testReleases())
	require.Len(t, stats, 2)

	assert.Equal(t, models.WeeklyStatistic{Repository: "test/repo", Year: 2023, Week: 27, ReleaseCount: 3, WorkingDayCount: 2}, stats[0])
	assert.Equal(t, models.WeeklyStatistic{Repository: "test/repo", Year: 2023, Week: 28, ReleaseCount: 1, WorkingDayCount: 1}, stats[1])
}

func TestWeeklyStatistics_ISOYearBoundary(t *testing.T) {
	stats := WeeklyStatistics([]models.Release{
		release("test/repo", "v1", "2021-01-01T12:00:00Z"),
		release("test/repo", "v2", "2020-12-31T12:00:00Z"),
	})
	require.Len(t, stats, 1)
	assert.Equal(t, 2020, stats[0].Year)
	assert.Equal(t, 53, stats[0].Week)
	assert.Equal(t, 2, stats[0].ReleaseCount)
}

func TestDailyStatistics(t *testing.T) {
	stats := DailyStatistics([]models.Release{
		release("X/x", "a", "2023-07-03T12:00:00Z"),
		release("X/x", "b", "2023-07-08T12:00:00Z"),
		release("X/x", "c", "2023-07-08T18:00:00Z"),
	})
	require.Len(t, stats, 2)
	assert.Equal(t, models.DailyStatistic{Repository: "X/x", Date: "2023-07-03", ReleaseCount: 1, IsWorkingDay: true}, stats[0])
	assert.Equal(t, models.DailyStatistic{Repository: "X/x", Date: "2023-07-08", ReleaseCount: 2, IsWorkingDay: false}, stats[1])
}

func TestStatistics_SeparateRepositories(t *testing.T) {
	releases := append(testReleases(), release("other/repo", "v0.1.0", "2023-07-03T09:00:00Z"))

	yearly := YearlyStatistics(releases)
	require.Len(t, yearly, 2)
	assert.Equal(t, "other/repo", yearly[1].Repository)
	assert.Equal(t, 1, yearly[1].ReleaseCount)

	daily := DailyStatistics(releases)
	assert.Len(t, daily, 5)
}

func TestStatistics_Empty(t *testing.T) {
	assert.Empty(t, YearlyStatistics(nil))
	assert.Empty(t, MonthlyStatistics(nil))
	assert.Empty(t, WeeklyStatistics(nil))
	assert.Empty(t, DailyStatistics(nil))
	assert.Empty(t, WorkingDaysBetweenReleases(nil))
	assert.NotNil(t, DailyStatistics(nil))
}

func TestWorkingDaysBetweenReleases(t *testing.T) {
	// input order must not matter
	releases := testReleases()
	releases[0], releases[3] = releases[3], releases[0]

	gaps := WorkingDaysBetweenReleases(releases)
	require.Len(t, gaps, 3)

	byTag := map[string]int{}
	for _, g := range gaps {
		assert.Equal(t, "test/repo", g.Repository)
		byTag[g.ReleaseTag] = g.WorkingDaysSincePreviousRelease
	}
	assert.Equal(t, map[string]int{"v1.1.0": 3, "v1.2.0": 3, "v1.3.0": 1}, byTag)
	assert.NotContains(t, byTag, "v1.0.0")
}

func TestWorkingDaysBetweenReleases_TieBreakOnTag(t *testing.T) {
	gaps := WorkingDaysBetweenReleases([]models.Release{
		release("test/repo", "v2", "2023-07-03T12:00:00Z"),
		release("test/repo", "v1", "2023-07-03T12:00:00Z"),
	})
	require.Len(t, gaps, 1)
	assert.Equal(t, "v2", gaps[0].ReleaseTag)
	assert.Equal(t, 1, gaps[0].WorkingDaysSincePreviousRelease)
}

func TestWorkingDayReleaseCount(t *testing.T) {
	assert.Equal(t, 3, WorkingDayReleaseCount(testReleases()))
}

func TestAverageWorkingDayGap(t *testing.T) {
	gaps := WorkingDaysBetweenReleases(testReleases())
	assert.InDelta(t, 7.0/3.0, AverageWorkingDayGap(gaps), 1e-9)
	assert.Equal(t, 0.0, AverageWorkingDayGap(nil))
}

func TestComparisonStatistics(t *testing.T) {
	releases := []models.Release{
		release("a/primary", "p1", "2023-07-03T12:00:00Z"),
		release("a/primary", "p2", "2023-07-04T12:00:00Z"),
		release("a/primary", "p3", "2023-07-05T12:00:00Z"),
		release("a/primary", "p4", "2023-08-01T12:00:00Z"),
		release("a/secondary", "s1", "2023-07-03T12:00:00Z"),
		release("a/secondary", "s2", "2023-09-03T12:00:00Z"),
	}

	comparison := ComparisonStatistics(releases, "a/primary", "a/secondary")
	require.Len(t, comparison, 3)

	total := comparison[0]
	assert.Equal(t, MetricTotalReleases, total.Metric)
	assert.Equal(t, 4.0, total.PrimaryValue)
	assert.Equal(t, 2.0, total.SecondaryValue)
	assert.Equal(t, 2.0, total.Difference)
	assert.Equal(t, 100.0, total.PercentageDifference)

	avg := comparison[1]
	assert.Equal(t, MetricAvgReleasesPerMonth, avg.Metric)
	assert.Equal(t, 2.0, avg.PrimaryValue)
	assert.Equal(t, 1.0, avg.SecondaryValue)

	highest := comparison[2]
	assert.Equal(t, MetricMaxReleasesInMonth, highest.Metric)
	assert.Equal(t, 3.0, highest.PrimaryValue)
	assert.Equal(t, 1.0, highest.SecondaryValue)
	assert.Equal(t, 200.0, highest.PercentageDifference)
}

func TestComparisonStatistics_ZeroDenominator(t *testing.T) {
	comparison := ComparisonStatistics(testReleases(), "test/repo", "missing/repo")
	for _, c := range comparison {
		assert.Equal(t, 0.0, c.SecondaryValue, c.Metric)
		assert.Equal(t, 0.0, c.PercentageDifference, c.Metric)
	}
	assert.Equal(t, 4.0, comparison[0].Difference)
}

func TestAggregateAuthorStats(t *testing.T) {
	first := []models.AuthorStat{
		{Author: "alice", Commits: 2, Additions: 10, Deletions: 1, FilesChanged: 1},
		{Author: "bob", Commits: 1, Additions: 5},
	}
	second := []models.AuthorStat{
		{Author: "carol", Commits: 3},
		{Author: "bob", Commits: 2, Deletions: 4, FilesChanged: 2},
	}

	got := AggregateAuthorStats(first, second)
	require.Len(t, got, 3)
	// bob and carol tie on 3 commits; bob was seen first
	assert.Equal(t, models.AuthorStat{Author: "bob", Commits: 3, Additions: 5, Deletions: 4, FilesChanged: 2}, got[0])
	assert.Equal(t, "carol", got[1].Author)
	assert.Equal(t, "alice", got[2].Author)

	t.Run("order of lists does not change totals", func(t *testing.T) {
		reversed := AggregateAuthorStats(second, first)
		totals := map[string]models.AuthorStat{}
		for _, s := range reversed {
			totals[s.Author] = s
		}
		for _, s := range got {
			assert.Equal(t, s, totals[s.Author])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AggregateAuthorStats())
	})
}

func TestAll(t *testing.T) {
	all := All(testReleases(), "test/repo", "other/repo")
	assert.Len(t, all.YearlyStats, 1)
	assert.Len(t, all.MonthlyStats, 1)
	assert.Len(t, all.WeeklyStats, 2)
	assert.Len(t, all.DailyStats, 4)
	assert.Len(t, all.ComparisonStats, 3)
	assert.Len(t, all.WorkingDaysBetweenReleases, 3)
	assert.Equal(t, 3, all.WorkingDayReleaseCount)
}
