package models

// YearlyStatistic counts releases of one repository in one calendar year
type YearlyStatistic struct {
	Repository      string `json:"repository"`
	Year            int    `json:"year"`
	ReleaseCount    int    `json:"release_count"`
	WorkingDayCount int    `json:"working_day_count"`
}

// MonthlyStatistic counts releases of one repository in one calendar month
type MonthlyStatistic struct {
	Repository      string `json:"repository"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	ReleaseCount    int    `json:"release_count"`
	WorkingDayCount int    `json:"working_day_count"`
}

// WeeklyStatistic counts releases of one repository in one ISO week.
// Year is the ISO week-numbering year.
type WeeklyStatistic struct {
	Repository      string `json:"repository"`
	Year            int    `json:"year"`
	Week            int    `json:"week"`
	ReleaseCount    int    `json:"release_count"`
	WorkingDayCount int    `json:"working_day_count"`
}

// DailyStatistic counts releases of one repository on one day
type DailyStatistic struct {
	Repository   string `json:"repository"`
	Date         string `json:"date"`
	ReleaseCount int    `json:"release_count"`
	IsWorkingDay bool   `json:"is_working_day"`
}

// ComparisonStatistic compares one metric between two repositories
type ComparisonStatistic struct {
	Metric               string  `json:"metric"`
	PrimaryRepository    string  `json:"primary_repository"`
	PrimaryValue         float64 `json:"primary_value"`
	SecondaryRepository  string  `json:"secondary_repository"`
	SecondaryValue       float64 `json:"secondary_value"`
	Difference           float64 `json:"difference"`
	PercentageDifference float64 `json:"percentage_difference"`
}

// WorkingDaysBetweenReleases is the working-day gap from a release to its predecessor
type WorkingDaysBetweenReleases struct {
	Repository                      string `json:"repository"`
	ReleaseTag                      string `json:"release_tag"`
	WorkingDaysSincePreviousRelease int    `json:"working_days_since_previous_release"`
}

// AllStatistics bundles every rollup computed over a release set
type AllStatistics struct {
	YearlyStats                []YearlyStatistic            `json:"yearlyStats"`
	MonthlyStats               []MonthlyStatistic           `json:"monthlyStats"`
	WeeklyStats                []WeeklyStatistic            `json:"weeklyStats"`
	DailyStats                 []DailyStatistic             `json:"dailyStats"`
	ComparisonStats            []ComparisonStatistic        `json:"comparisonStats"`
	WorkingDaysBetweenReleases []WorkingDaysBetweenReleases `json:"workingDaysBetweenReleases"`
	WorkingDayReleaseCount     int                          `json:"workingDayReleaseCount"`
}
