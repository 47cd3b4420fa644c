package github

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Kamar-Folarin/release-dashboard/internal/metrics"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
	"github.com/Kamar-Folarin/release-dashboard/internal/utils"
)

const (
	allReleasesKey            = "all"
	defaultCompareConcurrency = 4
)

// ReleaseService fetches releases and comparisons through layered caches.
// Historical releases and diffs are immutable, so entries never expire
// unless a TTL is configured.
type ReleaseService struct {
	client       ReleaseClient
	repositories []string
	logger       *logrus.Logger

	releases    *cache.Cache
	comparisons *cache.Cache
	all         *cache.Cache
	group       singleflight.Group

	compareConcurrency int
}

// NewReleaseService creates a release service. A zero ttl keeps entries for
// the process lifetime.
func NewReleaseService(client ReleaseClient, repositories []string, ttl time.Duration, logger *logrus.Logger) *ReleaseService {
	return &ReleaseService{
		client:             client,
		repositories:       append([]string(nil), repositories...),
		logger:             logger,
		releases:           newCache(ttl),
		comparisons:        newCache(ttl),
		all:                newCache(ttl),
		compareConcurrency: defaultCompareConcurrency,
	}
}

// NewResponseCache creates the cache handed to the client for raw responses
func NewResponseCache(ttl time.Duration) *cache.Cache {
	return newCache(ttl)
}

func newCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		return cache.New(cache.NoExpiration, 0)
	}
	return cache.New(ttl, 2*ttl)
}

// Repositories returns the configured repository list
func (s *ReleaseService) Repositories() []string {
	return append([]string(nil), s.repositories...)
}

// FetchRepositoryReleases returns the releases of repository, fetching them
// once per process
func (s *ReleaseService) FetchRepositoryReleases(ctx context.Context, repository string) ([]models.Release, error) {
	owner, name, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, err
	}
	key := owner + "/" + name

	if cached, ok := s.releases.Get(key); ok {
		metrics.ObserveCache("releases", true)
		return copyReleases(cached.([]models.Release)), nil
	}
	metrics.ObserveCache("releases", false)

	v, err := SharedDo(ctx, &s.group, "releases:"+key, func(ctx context.Context) (interface{}, error) {
		if cached, ok := s.releases.Get(key); ok {
			return cached, nil
		}
		releases, err := s.client.ListAllReleases(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		s.releases.SetDefault(key, releases)
		return releases, nil
	})
	if err != nil {
		return nil, err
	}
	return copyReleases(v.([]models.Release)), nil
}

// FetchAllReleases returns the releases of every configured repository in
// configured order. Repositories are fetched concurrently and the combined
// result is memoized.
func (s *ReleaseService) FetchAllReleases(ctx context.Context) ([]models.Release, error) {
	if cached, ok := s.all.Get(allReleasesKey); ok {
		metrics.ObserveCache("all_releases", true)
		return copyReleases(cached.([]models.Release)), nil
	}
	metrics.ObserveCache("all_releases", false)

	v, err := SharedDo(ctx, &s.group, allReleasesKey, func(ctx context.Context) (interface{}, error) {
		if cached, ok := s.all.Get(allReleasesKey); ok {
			return cached, nil
		}

		results := make([][]models.Release, len(s.repositories))
		g, gctx := errgroup.WithContext(ctx)
		for i, repo := range s.repositories {
			i, repo := i, repo
			g.Go(func() error {
				releases, err := s.FetchRepositoryReleases(gctx, repo)
				if err != nil {
					return err
				}
				results[i] = releases
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		all := make([]models.Release, 0)
		for _, releases := range results {
			all = append(all, releases...)
		}
		s.all.SetDefault(allReleasesKey, all)

		s.logger.WithFields(logrus.Fields{
			"repositories":   len(s.repositories),
			"total_releases": len(all),
		}).Info("Fetched releases for all repositories")
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return copyReleases(v.([]models.Release)), nil
}

// FetchRepositoryReleaseStats lists releases of repository within the
// inclusive range newest-first, each compared with the next older release of
// the same filtered list.
func (s *ReleaseService) FetchRepositoryReleaseStats(ctx context.Context, repository string, start, end *time.Time) (*models.RepositoryReleaseStats, error) {
	owner, name, err := utils.ParseRepository(repository)
	if err != nil {
		return nil, err
	}

	releases, err := s.FetchRepositoryReleases(ctx, repository)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Release, 0, len(releases))
	for _, r := range releases {
		if start != nil && r.PublishedAt.Before(*start) {
			continue
		}
		if end != nil && r.PublishedAt.After(*end) {
			continue
		}
		filtered = append(filtered, r)
	}
	sortNewestFirst(filtered)

	logger := s.logger.WithFields(logrus.Fields{
		"repository": owner + "/" + name,
		"releases":   len(filtered),
	})

	out := make([]models.ReleaseStats, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.compareConcurrency)
	for i, cur := range filtered {
		i, cur := i, cur
		out[i] = models.ReleaseStats{
			TagName:             cur.TagName,
			Name:                cur.Name,
			PublishedAt:         cur.PublishedAt,
			Author:              cur.Author,
			CompareWithPrevious: models.EmptyComparison(),
		}
		if i == len(filtered)-1 {
			continue
		}
		prev := filtered[i+1]

		g.Go(func() error {
			cmp, err := s.compareReleases(gctx, owner, name, prev.TagName, cur.TagName)
			if err != nil {
				if IsUnauthorizedError(err) || IsRateLimitError(err) ||
					errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.WithError(err).WithFields(logrus.Fields{
					"base": prev.TagName,
					"head": cur.TagName,
				}).Warn("Failed to compare releases, using empty comparison")
				return nil
			}
			out[i].CompareWithPrevious = cmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Computed release comparison stats")
	return &models.RepositoryReleaseStats{
		Repository: owner + "/" + name,
		Releases:   out,
	}, nil
}

func (s *ReleaseService) compareReleases(ctx context.Context, owner, name, base, head string) (models.ReleaseComparison, error) {
	key := owner + "/" + name + "/" + base + "..." + head
	if cached, ok := s.comparisons.Get(key); ok {
		metrics.ObserveCache("comparisons", true)
		return cached.(models.ReleaseComparison), nil
	}
	metrics.ObserveCache("comparisons", false)

	v, err := SharedDo(ctx, &s.group, "compare:"+key, func(ctx context.Context) (interface{}, error) {
		if cached, ok := s.comparisons.Get(key); ok {
			return cached, nil
		}
		cmp, err := s.client.CompareTags(ctx, owner, name, base, head)
		if err != nil {
			return nil, err
		}
		s.comparisons.SetDefault(key, cmp)
		return cmp, nil
	})
	if err != nil {
		return models.EmptyComparison(), err
	}
	return v.(models.ReleaseComparison), nil
}

// ClearCaches flushes releases, comparisons, the combined result and raw
// responses. Calling it repeatedly is harmless.
func (s *ReleaseService) ClearCaches() {
	s.releases.Flush()
	s.comparisons.Flush()
	s.all.Flush()
	s.client.ClearResponseCache()
	s.logger.Info("Cleared release caches")
}

// sortNewestFirst orders releases by publication time descending, tag name
// descending on ties
func sortNewestFirst(releases []models.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i], releases[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.TagName > b.TagName
	})
}

func copyReleases(in []models.Release) []models.Release {
	out := make([]models.Release, len(in))
	copy(out, in)
	return out
}
