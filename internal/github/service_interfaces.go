package github

import (
	"context"
	"time"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// ReleaseClient defines the upstream calls the release service depends on
type ReleaseClient interface {
	// ListAllReleases fetches every release of a repository across all pages
	ListAllReleases(ctx context.Context, owner, name string) ([]models.Release, error)

	// CompareTags summarizes the commits between two tags of a repository
	CompareTags(ctx context.Context, owner, name, base, head string) (models.ReleaseComparison, error)

	// ClearResponseCache drops raw cached responses
	ClearResponseCache()
}

// ReleaseSource defines the cached release operations used by the dashboard,
// the export jobs and the API handlers
type ReleaseSource interface {
	// Repositories returns the configured repository list
	Repositories() []string

	// FetchAllReleases returns the releases of every configured repository
	FetchAllReleases(ctx context.Context) ([]models.Release, error)

	// FetchRepositoryReleases returns the releases of one "owner/name" repository
	FetchRepositoryReleases(ctx context.Context, repository string) ([]models.Release, error)

	// FetchRepositoryReleaseStats compares each release in range with the next older one
	FetchRepositoryReleaseStats(ctx context.Context, repository string, start, end *time.Time) (*models.RepositoryReleaseStats, error)

	// ClearCaches flushes every cache layer
	ClearCaches()
}
