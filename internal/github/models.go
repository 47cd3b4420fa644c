package github

import (
	gh "github.com/google/go-github/v57/github"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/stats"
)

// toRelease converts a published upstream release. Timestamps are normalized
// to UTC so calendar grouping never depends on the server's zone.
func toRelease(owner, name string, r *gh.RepositoryRelease) models.Release {
	published := r.GetPublishedAt().Time
	created := r.GetCreatedAt().Time
	return models.Release{
		Owner:       owner,
		Repo:        name,
		Repository:  owner + "/" + name,
		TagName:     r.GetTagName(),
		Name:        r.GetName(),
		CreatedAt:   created.UTC(),
		PublishedAt: published.UTC(),
		Author:      r.GetAuthor().GetLogin(),
		HTMLURL:     r.GetHTMLURL(),
		Draft:       r.GetDraft(),
		Prerelease:  r.GetPrerelease(),
	}
}

// commitAuthor identifies a commit by login, falling back to the git author name
func commitAuthor(c *gh.RepositoryCommit) string {
	if login := c.GetAuthor().GetLogin(); login != "" {
		return login
	}
	if name := c.GetCommit().GetAuthor().GetName(); name != "" {
		return name
	}
	return "unknown"
}

// comparisonTally accumulates comparison pages into a ReleaseComparison
type comparisonTally struct {
	result models.ReleaseComparison
	index  map[string]int
	pages  int
}

func newComparisonTally() *comparisonTally {
	return &comparisonTally{
		result: models.EmptyComparison(),
		index:  make(map[string]int),
	}
}

func (t *comparisonTally) add(page *gh.CommitsComparison) {
	for _, c := range page.Commits {
		t.result.TotalCommits++
		author := commitAuthor(c)
		i, ok := t.index[author]
		if !ok {
			i = len(t.result.AuthorStats)
			t.index[author] = i
			t.result.AuthorStats = append(t.result.AuthorStats, models.AuthorStat{Author: author})
		}
		t.result.AuthorStats[i].Commits++
	}
	// the changed-file list is only sent with the first page
	if t.pages == 0 {
		for _, f := range page.Files {
			t.result.TotalAdditions += f.GetAdditions()
			t.result.TotalDeletions += f.GetDeletions()
			t.result.TotalFilesChanged++
		}
	}
	t.pages++
}

// comparison returns the tallied result with authors ordered by commits
func (t *comparisonTally) comparison() models.ReleaseComparison {
	out := t.result
	out.AuthorStats = stats.AggregateAuthorStats(t.result.AuthorStats)
	return out
}
