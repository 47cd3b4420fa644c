package models

import (
	"encoding/json"
	"time"
)

// Timeframe is the granularity of the dashboard time series
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// Valid reports whether t is a known timeframe
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	}
	return false
}

// DashboardFilters narrows the release set
type DashboardFilters struct {
	Repository  []string `json:"repository,omitempty" validate:"omitempty,dive,required,repository"`
	ReleaseType []string `json:"releaseType,omitempty" validate:"omitempty,dive,oneof=regular prerelease draft"`
}

// SortSpec orders dashboard collections
type SortSpec struct {
	Field     string `json:"field" validate:"required,sortfield"`
	Direction string `json:"direction" validate:"required,oneof=asc desc"`
}

// DashboardFilterParams is the full, decoded dashboard query
type DashboardFilterParams struct {
	Timeframe Timeframe        `json:"timeframe"`
	StartDate *time.Time       `json:"startDate,omitempty"`
	EndDate   *time.Time       `json:"endDate,omitempty"`
	Filters   DashboardFilters `json:"filters"`
	Sort      *SortSpec        `json:"sort,omitempty"`
}

// CacheKey serializes the parameters into a stable cache key
func (p DashboardFilterParams) CacheKey() string {
	data, err := json.Marshal(p)
	if err != nil {
		return string(p.Timeframe)
	}
	return string(data)
}

// TimeSeriesDataPoint is one bucket of the dashboard time series
type TimeSeriesDataPoint struct {
	Date             string `json:"date"`
	Repository       string `json:"repository"`
	ReleaseCount     int    `json:"releaseCount"`
	CommitCount      int    `json:"commitCount"`
	ContributorCount int    `json:"contributorCount"`
}

// RecentRelease summarizes one of the most recent releases
type RecentRelease struct {
	Repository   string    `json:"repository"`
	TagName      string    `json:"tagName"`
	Name         string    `json:"name"`
	PublishedAt  time.Time `json:"publishedAt"`
	CommitCount  int       `json:"commitCount"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"filesChanged"`
}

// TopContributor is an author ranked by commits
type TopContributor struct {
	Author                 string  `json:"author"`
	Commits                int     `json:"commits"`
	Additions              int     `json:"additions"`
	Deletions              int     `json:"deletions"`
	FilesChanged           int     `json:"filesChanged"`
	ContributionPercentage float64 `json:"contributionPercentage"`
}

// SummaryStats holds the dashboard headline numbers
type SummaryStats struct {
	TotalReleases            int              `json:"totalReleases"`
	TotalCommits             int              `json:"totalCommits"`
	TotalContributors        int              `json:"totalContributors"`
	AverageCommitsPerRelease float64          `json:"averageCommitsPerRelease"`
	AverageTimeToRelease     float64          `json:"averageTimeToRelease"`
	TotalAdditions           int              `json:"totalAdditions"`
	TotalDeletions           int              `json:"totalDeletions"`
	TotalFilesChanged        int              `json:"totalFilesChanged"`
	RecentReleases           []RecentRelease  `json:"recentReleases"`
	TopContributors          []TopContributor `json:"topContributors"`
}

// TopRepository is a repository ranked by release activity
type TopRepository struct {
	Name         string `json:"name"`
	ReleaseCount int    `json:"releaseCount"`
	CommitCount  int    `json:"commitCount"`
}

// ReleaseTypeBreakdown is the share of one release type
type ReleaseTypeBreakdown struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardData is the full dashboard payload
type DashboardData struct {
	TimeSeriesData       []TimeSeriesDataPoint  `json:"timeSeriesData"`
	SummaryStats         SummaryStats           `json:"summaryStats"`
	TopRepositories      []TopRepository        `json:"topRepositories"`
	ReleaseTypeBreakdown []ReleaseTypeBreakdown `json:"releaseTypeBreakdown"`
}
