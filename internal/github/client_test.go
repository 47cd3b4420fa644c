package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/release-dashboard/internal/config"
)

type recordedSleeps struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
	return nil
}

func (r *recordedSleeps) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sleeps)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(baseURL string) *config.GitHubConfig {
	cfg := config.DefaultGitHubConfig()
	cfg.Token = "test-token"
	cfg.APIBaseURL = baseURL + "/"
	cfg.RequestsPerSecond = 0
	cfg.RateLimit.InitialBackoff = time.Millisecond
	cfg.RateLimit.MaxBackoff = 5 * time.Millisecond
	cfg.RateLimit.MaxRetries = 2
	cfg.RateLimit.MaxRateLimitWaits = 2
	return cfg
}

func setupTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*config.GitHubConfig)) (*Client, *recordedSleeps, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	if mutate != nil {
		mutate(cfg)
	}

	sleeps := &recordedSleeps{}
	client, err := NewClient(cfg, testLogger(), WithSleep(sleeps.sleep))
	require.NoError(t, err)
	return client, sleeps, &calls
}

func releaseJSON(tag, published string) string {
	return fmt.Sprintf(`{
		"tag_name": %q,
		"name": "Release %s",
		"created_at": %q,
		"published_at": %q,
		"author": {"login": "releaser"},
		"html_url": "https://github.com/test-owner/test-repo/releases/tag/%s",
		"draft": false,
		"prerelease": false
	}`, tag, tag, published, published, tag)
}

func TestClient_ListAllReleases(t *testing.T) {
	client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/repos/test-owner/test-repo/releases", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", `<https://api.github.com/repos/test-owner/test-repo/releases?page=2&per_page=100>; rel="next"`)
			fmt.Fprintf(w, "[%s,%s]", releaseJSON("v1.2.0", "2023-07-10T12:00:00+09:00"), releaseJSON("v1.1.0", "2023-07-05T12:00:00Z"))
		case "2":
			fmt.Fprintf(w, "[%s]", releaseJSON("v1.0.0", "2023-07-03T12:00:00Z"))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}, nil)

	releases, err := client.ListAllReleases(context.Background(), "test-owner", "test-repo")
	require.NoError(t, err)
	require.Len(t, releases, 3)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	assert.Equal(t, "test-owner/test-repo", releases[0].Repository)
	assert.Equal(t, "v1.2.0", releases[0].TagName)
	assert.Equal(t, "releaser", releases[0].Author)
	assert.Equal(t, time.UTC, releases[0].PublishedAt.Location())
	assert.Equal(t, time.Date(2023, time.July, 10, 3, 0, 0, 0, time.UTC), releases[0].PublishedAt)
	assert.Equal(t, "v1.0.0", releases[2].TagName)
}

func TestClient_ListAllReleases_EmptyPageStops(t *testing.T) {
	client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}, nil)

	releases, err := client.ListAllReleases(context.Background(), "test-owner", "test-repo")
	require.NoError(t, err)
	assert.Empty(t, releases)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestClient_ListAllReleases_SkipsUnpublished(t *testing.T) {
	draft := `{"tag_name":"v9.0.0","created_at":"2023-07-08T12:00:00Z","published_at":null,"draft":true}`

	client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", `<https://api.github.com/repos/test-owner/test-repo/releases?page=2&per_page=100>; rel="next"`)
			fmt.Fprintf(w, "[%s]", draft)
		case "2":
			fmt.Fprintf(w, "[%s,%s]", draft, releaseJSON("v1.0.0", "2023-07-03T12:00:00Z"))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}, nil)

	releases, err := client.ListAllReleases(context.Background(), "test-owner", "test-repo")
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "v1.0.0", releases[0].TagName)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	page, next, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, 2, next)
}

func TestClient_Validation(t *testing.T) {
	client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, nil)

	_, _, err := client.ListReleasesPage(context.Background(), "", "repo", 1)
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestClient_RetryHandling(t *testing.T) {
	t.Run("server errors are retried", func(t *testing.T) {
		var attempts int32
		client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"boom"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, "[%s]", releaseJSON("v1.0.0", "2023-07-03T12:00:00Z"))
		}, nil)

		releases, _, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
		require.NoError(t, err)
		assert.Len(t, releases, 1)
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("retries are bounded", func(t *testing.T) {
		client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"message":"bad gateway"}`))
		}, nil)

		_, _, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries exceeded")

		var ghErr *GitHubError
		require.True(t, errors.As(err, &ghErr))
		assert.Equal(t, http.StatusBadGateway, ghErr.StatusCode)
		// initial attempt plus MaxRetries
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})
}

func TestClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "not found", status: http.StatusNotFound, check: IsNotFoundError},
		{name: "unauthorized", status: http.StatusUnauthorized, check: IsUnauthorizedError},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, check: func(err error) bool {
			var ghErr *GitHubError
			return errors.As(err, &ghErr) && ghErr.StatusCode == http.StatusUnprocessableEntity
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}, nil)

			_, err := client.ListAllReleases(context.Background(), "test-owner", "test-repo")
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "semantic errors are not retried")
		})
	}
}

func writeRateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "60")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"message":"API rate limit exceeded for 127.0.0.1."}`))
}

func TestClient_RateLimitHandling(t *testing.T) {
	t.Run("waits for reset without spending retries", func(t *testing.T) {
		var attempts int32
		client, sleeps, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				writeRateLimited(w, time.Now().Add(-time.Second))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Remaining", "59")
			fmt.Fprintf(w, "[%s]", releaseJSON("v1.0.0", "2023-07-03T12:00:00Z"))
		}, func(cfg *config.GitHubConfig) {
			cfg.RateLimit.MaxRetries = 0
		})

		releases, _, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
		require.NoError(t, err)
		assert.Len(t, releases, 1)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
		assert.Equal(t, 1, sleeps.count())
		assert.Equal(t, 59, client.RateLimit().Remaining)
	})

	t.Run("gives up after bounded waits", func(t *testing.T) {
		client, sleeps, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeRateLimited(w, time.Now().Add(-time.Second))
		}, nil)

		_, _, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
		require.Error(t, err)
		assert.True(t, IsRateLimitError(err))
		assert.Equal(t, 2, sleeps.count())
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("too many requests honours retry-after", func(t *testing.T) {
		var attempts int32
		client, sleeps, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"message":"slow down"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		}, nil)

		_, _, err := client.ListReleasesPage(context.Background(), "test-owner", "test-repo", 1)
		require.NoError(t, err)
		require.Equal(t, 1, sleeps.count())
		assert.Equal(t, 2*time.Second, sleeps.sleeps[0])
	})
}

func TestClient_CompareTags(t *testing.T) {
	client, _, calls := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/test-owner/test-repo/compare/v1.0.0...v1.1.0", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_commits": 3,
			"commits": [
				{"sha": "a", "author": {"login": "alice"}, "commit": {"author": {"name": "Alice"}}},
				{"sha": "b", "author": null, "commit": {"author": {"name": "Bob Builder"}}},
				{"sha": "c", "author": {"login": "alice"}, "commit": {"author": {"name": "Alice"}}}
			],
			"files": [
				{"filename": "a.go", "additions": 10, "deletions": 2},
				{"filename": "b.go", "additions": 5, "deletions": 0}
			]
		}`))
	}, nil)

	ctx := context.Background()
	cmp, err := client.CompareTags(ctx, "test-owner", "test-repo", "v1.0.0", "v1.1.0")
	require.NoError(t, err)
	assert.Equal(t, 3, cmp.TotalCommits)
	assert.Equal(t, 15, cmp.TotalAdditions)
	assert.Equal(t, 2, cmp.TotalDeletions)
	assert.Equal(t, 2, cmp.TotalFilesChanged)
	require.Len(t, cmp.AuthorStats, 2)
	assert.Equal(t, "alice", cmp.AuthorStats[0].Author)
	assert.Equal(t, 2, cmp.AuthorStats[0].Commits)
	assert.Equal(t, "Bob Builder", cmp.AuthorStats[1].Author)

	t.Run("identical request is served from the response cache", func(t *testing.T) {
		again, err := client.CompareTags(ctx, "test-owner", "test-repo", "v1.0.0", "v1.1.0")
		require.NoError(t, err)
		assert.Equal(t, cmp, again)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("clearing the cache refetches", func(t *testing.T) {
		client.ClearResponseCache()
		_, err := client.CompareTags(ctx, "test-owner", "test-repo", "v1.0.0", "v1.1.0")
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	})
}
