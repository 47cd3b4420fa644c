package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v57/github"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/Kamar-Folarin/release-dashboard/internal/config"
	"github.com/Kamar-Folarin/release-dashboard/internal/metrics"
	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

// defaultSecondaryWait is used when a secondary limit carries no Retry-After
const defaultSecondaryWait = time.Minute

// RateLimitInfo holds the last quota reported by GitHub
type RateLimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

type sleepFunc func(ctx context.Context, d time.Duration) error

// Client is a rate-limited, retrying GitHub REST client for releases and
// tag comparisons
type Client struct {
	gh        *gh.Client
	cfg       config.GitHubConfig
	limiter   *rate.Limiter
	logger    *logrus.Logger
	responses *cache.Cache
	sleep     sleepFunc

	mu            sync.RWMutex
	rateLimitInfo RateLimitInfo
}

// ClientOption allows configuring the GitHub client
type ClientOption func(*Client)

// WithResponseCache sets the cache holding raw comparison pages by request URL
func WithResponseCache(c *cache.Cache) ClientOption {
	return func(client *Client) {
		client.responses = c
	}
}

// WithSleep replaces the function used to wait for rate limit resets
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(client *Client) {
		client.sleep = fn
	}
}

// NewClient creates a GitHub client. An empty token makes anonymous requests.
func NewClient(cfg *config.GitHubConfig, logger *logrus.Logger, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultGitHubConfig()
	}

	var httpClient *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = 120 * time.Second

	ghClient := gh.NewClient(httpClient)
	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API base URL %q: %w", cfg.APIBaseURL, err)
		}
		ghClient.BaseURL = u
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	client := &Client{
		gh:      ghClient,
		cfg:     *cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		sleep:   sleepContext,
	}
	if client.cfg.PerPage <= 0 {
		client.cfg.PerPage = 100
	}

	for _, opt := range opts {
		opt(client)
	}
	if client.responses == nil {
		client.responses = cache.New(cache.NoExpiration, 0)
	}

	return client, nil
}

// RateLimit returns the most recent quota seen in a response
func (c *Client) RateLimit() RateLimitInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimitInfo
}

func (c *Client) updateRateLimitInfo(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	c.mu.Lock()
	c.rateLimitInfo = RateLimitInfo{
		Limit:     resp.Rate.Limit,
		Remaining: resp.Rate.Remaining,
		ResetTime: resp.Rate.Reset.Time,
	}
	c.mu.Unlock()
}

// ListReleasesPage fetches one page of published releases and returns the
// next page number, 0 when there is none. Releases without a publication time
// are skipped.
func (c *Client) ListReleasesPage(ctx context.Context, owner, name string, page int) ([]models.Release, int, error) {
	if owner == "" {
		return nil, 0, NewValidationError("owner", "cannot be empty")
	}
	if name == "" {
		return nil, 0, NewValidationError("name", "cannot be empty")
	}

	opts := &gh.ListOptions{Page: page, PerPage: c.cfg.PerPage}
	var (
		upstream []*gh.RepositoryRelease
		resp     *gh.Response
	)
	err := c.doWithRetry(ctx, "list_releases", owner, name, func() (*gh.Response, error) {
		var err error
		upstream, resp, err = c.gh.Repositories.ListReleases(ctx, owner, name, opts)
		return resp, err
	})
	if err != nil {
		return nil, 0, err
	}

	releases := make([]models.Release, 0, len(upstream))
	for _, r := range upstream {
		if r.PublishedAt == nil {
			c.logger.WithFields(logrus.Fields{
				"repository": owner + "/" + name,
				"tag":        r.GetTagName(),
			}).Warn("Skipping release without publication time")
			continue
		}
		releases = append(releases, toRelease(owner, name, r))
	}

	next := 0
	if resp != nil && len(upstream) > 0 {
		next = resp.NextPage
	}
	return releases, next, nil
}

// ListAllReleases follows pagination until GitHub reports no next page or a
// page comes back empty. A page holding only unpublished drafts does not stop
// the walk.
func (c *Client) ListAllReleases(ctx context.Context, owner, name string) ([]models.Release, error) {
	logger := c.logger.WithField("repository", owner+"/"+name)
	logger.Info("Fetching releases from GitHub API")

	var all []models.Release
	page := 1
	for {
		releases, next, err := c.ListReleasesPage(ctx, owner, name, page)
		if err != nil {
			logger.WithError(err).WithField("page", page).Error("Failed to fetch releases page")
			return nil, err
		}

		logger.WithFields(logrus.Fields{
			"page":           page,
			"releases_found": len(releases),
		}).Debug("Fetched releases page")

		all = append(all, releases...)
		if next == 0 {
			break
		}
		page = next
	}

	logger.WithField("total_releases", len(all)).Info("Completed fetching releases")
	return all, nil
}

// comparePage is one cached page of a tag comparison
type comparePage struct {
	comparison *gh.CommitsComparison
	next       int
}

func (c *Client) compareURL(owner, name, base, head string, page int) string {
	return fmt.Sprintf("%srepos/%s/%s/compare/%s...%s?page=%d&per_page=%d",
		c.gh.BaseURL.String(), owner, name, url.PathEscape(base), url.PathEscape(head), page, c.cfg.PerPage)
}

// CompareTags summarizes the commits between base and head. Raw pages are
// served from the response cache when the same URL was fetched before.
func (c *Client) CompareTags(ctx context.Context, owner, name, base, head string) (models.ReleaseComparison, error) {
	if base == "" || head == "" {
		return models.EmptyComparison(), NewValidationError("tag", "cannot be empty")
	}

	tally := newComparisonTally()
	page := 1
	for {
		key := c.compareURL(owner, name, base, head, page)

		var entry comparePage
		if cached, ok := c.responses.Get(key); ok {
			metrics.ObserveCache("response", true)
			entry = cached.(comparePage)
		} else {
			metrics.ObserveCache("response", false)
			opts := &gh.ListOptions{Page: page, PerPage: c.cfg.PerPage}
			err := c.doWithRetry(ctx, "compare", owner, name, func() (*gh.Response, error) {
				cmp, resp, err := c.gh.Repositories.CompareCommits(ctx, owner, name, base, head, opts)
				if err != nil {
					return resp, err
				}
				entry = comparePage{comparison: cmp}
				if resp != nil {
					entry.next = resp.NextPage
				}
				return resp, nil
			})
			if err != nil {
				return models.EmptyComparison(), err
			}
			c.responses.SetDefault(key, entry)
		}

		tally.add(entry.comparison)
		if entry.next == 0 || len(entry.comparison.Commits) == 0 {
			break
		}
		page = entry.next
	}

	return tally.comparison(), nil
}

// ClearResponseCache drops every cached comparison page
func (c *Client) ClearResponseCache() {
	c.responses.Flush()
}

func (c *Client) newBackOff() backoff.BackOff {
	rl := c.cfg.RateLimit
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rl.InitialBackoff
	b.Multiplier = rl.RetryMultiplier
	b.MaxInterval = rl.MaxBackoff
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	retries := rl.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(b, uint64(retries))
}

// doWithRetry runs call with exponential backoff on transient failures.
// Rate-limit responses wait for the reset and repeat the call without
// consuming the retry budget.
func (c *Client) doWithRetry(ctx context.Context, operation, owner, name string, call func() (*gh.Response, error)) error {
	logger := c.logger.WithFields(logrus.Fields{
		"operation":  operation,
		"repository": owner + "/" + name,
	})

	waits := 0
	op := func() error {
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}

			resp, err := call()
			c.updateRateLimitInfo(resp)
			if err == nil {
				metrics.UpstreamRequestsTotal.WithLabelValues(operation, "success").Inc()
				return nil
			}

			if wait, limited := rateLimitWait(err); limited {
				metrics.UpstreamRequestsTotal.WithLabelValues(operation, "rate_limited").Inc()
				if waits >= c.cfg.RateLimit.MaxRateLimitWaits || wait > c.cfg.RateLimit.MaxRateLimitWait {
					return backoff.Permanent(rateLimitFailure(err))
				}
				waits++
				logger.WithField("wait", wait.String()).Warn("Rate limit exceeded, waiting for reset")
				metrics.RateLimitWaitSeconds.Observe(wait.Seconds())
				if err := c.sleep(ctx, wait); err != nil {
					return backoff.Permanent(err)
				}
				continue
			}

			metrics.UpstreamRequestsTotal.WithLabelValues(operation, "error").Inc()
			classified := classifyError(err, owner, name)
			var ghErr *GitHubError
			if errors.As(classified, &ghErr) && ghErr.Retryable() {
				return classified
			}
			return backoff.Permanent(classified)
		}
	}

	notify := func(err error, next time.Duration) {
		metrics.UpstreamRetriesTotal.WithLabelValues(operation).Inc()
		logger.WithError(err).WithField("backoff", next.String()).Warn("Request failed, retrying")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(c.newBackOff(), ctx), notify)
	if err == nil {
		return nil
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) && ghErr.Retryable() {
		return fmt.Errorf("%s %s/%s: max retries exceeded: %w", operation, owner, name, err)
	}
	return err
}

// rateLimitWait reports whether err is a rate limit signal and how long to
// wait before repeating the request
func rateLimitWait(err error) (time.Duration, bool) {
	var primary *gh.RateLimitError
	if errors.As(err, &primary) {
		wait := time.Until(primary.Rate.Reset.Time)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}

	var secondary *gh.AbuseRateLimitError
	if errors.As(err, &secondary) {
		if secondary.RetryAfter != nil {
			return *secondary.RetryAfter, true
		}
		return defaultSecondaryWait, true
	}

	var resp *gh.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil && resp.Response.StatusCode == http.StatusTooManyRequests {
		if seconds, err := strconv.Atoi(resp.Response.Header.Get("Retry-After")); err == nil {
			return time.Duration(seconds) * time.Second, true
		}
		return defaultSecondaryWait, true
	}

	return 0, false
}

func rateLimitFailure(err error) error {
	var primary *gh.RateLimitError
	if errors.As(err, &primary) {
		return NewRateLimitError(primary.Rate.Reset.Time, primary.Rate.Limit, primary.Rate.Remaining)
	}
	return NewRateLimitError(time.Now().Add(defaultSecondaryWait), 0, 0)
}

// classifyError maps a go-github failure to the package error types
func classifyError(err error, owner, name string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var resp *gh.ErrorResponse
	if !errors.As(err, &resp) || resp.Response == nil {
		return NewGitHubError(0, "request failed", err)
	}

	switch status := resp.Response.StatusCode; status {
	case http.StatusNotFound:
		return NewRepositoryNotFoundError(owner, name)
	case http.StatusUnauthorized:
		return NewUnauthorizedError(resp.Message)
	default:
		return NewGitHubError(status, resp.Message, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
