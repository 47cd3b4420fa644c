package models

import (
	"encoding/json"
	"time"

	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

// Release is a tagged publication of a repository. Calendar fields are
// derived from PublishedAt on demand and never stored.
type Release struct {
	Owner       string    `json:"owner"`
	Repo        string    `json:"repo"`
	Repository  string    `json:"repository"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedAt time.Time `json:"published_at"`
	Author      string    `json:"author"`
	HTMLURL     string    `json:"html_url,omitempty"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

func (r Release) Year() int {
	return r.PublishedAt.Year()
}

func (r Release) Month() int {
	return int(r.PublishedAt.Month())
}

// ISOWeek returns the ISO-8601 year and week of the publication date.
func (r Release) ISOWeek() (year, week int) {
	return utils.ISOWeek(r.PublishedAt)
}

func (r Release) Day() int {
	return r.PublishedAt.Day()
}

func (r Release) Date() string {
	return r.PublishedAt.Format(utils.DateLayout)
}

func (r Release) IsWorkingDay() bool {
	return utils.IsWorkingDay(r.PublishedAt)
}

// Type classifies the release as draft, prerelease or regular.
func (r Release) Type() string {
	switch {
	case r.Draft:
		return ReleaseTypeDraft
	case r.Prerelease:
		return ReleaseTypePrerelease
	default:
		return ReleaseTypeRegular
	}
}

// MarshalJSON emits the stored fields plus the derived calendar fields.
func (r Release) MarshalJSON() ([]byte, error) {
	type plain Release
	isoYear, week := r.ISOWeek()
	return json.Marshal(struct {
		plain
		Year         int  `json:"year"`
		Month        int  `json:"month"`
		ISOYear      int  `json:"iso_year"`
		Week         int  `json:"week"`
		Day          int  `json:"day"`
		IsWorkingDay bool `json:"is_working_day"`
	}{
		plain:        plain(r),
		Year:         r.Year(),
		Month:        r.Month(),
		ISOYear:      isoYear,
		Week:         week,
		Day:          r.Day(),
		IsWorkingDay: r.IsWorkingDay(),
	})
}

// Release types reported by the dashboard breakdown
const (
	ReleaseTypeRegular    = "regular"
	ReleaseTypePrerelease = "prerelease"
	ReleaseTypeDraft      = "draft"
)

// AuthorStat holds per-author contribution counts
type AuthorStat struct {
	Author       string `json:"author"`
	Commits      int    `json:"commits"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"filesChanged"`
}

// ReleaseComparison is the diff between a release and its predecessor
type ReleaseComparison struct {
	TotalCommits      int          `json:"totalCommits"`
	TotalAdditions    int          `json:"totalAdditions"`
	TotalDeletions    int          `json:"totalDeletions"`
	TotalFilesChanged int          `json:"totalFilesChanged"`
	AuthorStats       []AuthorStat `json:"authorStats"`
}

// EmptyComparison is the comparison of a release without predecessor
func EmptyComparison() ReleaseComparison {
	return ReleaseComparison{AuthorStats: []AuthorStat{}}
}

// ReleaseStats pairs a release with its comparison against the next older release
type ReleaseStats struct {
	TagName             string            `json:"tagName"`
	Name                string            `json:"name"`
	PublishedAt         time.Time         `json:"publishedAt"`
	Author              string            `json:"author"`
	CompareWithPrevious ReleaseComparison `json:"compareWithPrevious"`
}

// RepositoryReleaseStats lists releases of one repository newest-first
type RepositoryReleaseStats struct {
	Repository string         `json:"repository"`
	Releases   []ReleaseStats `json:"releases"`
}
