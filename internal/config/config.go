package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                string
	LogLevel            string
	GitHub              *GitHubConfig
	Repositories        []string
	DefaultOwner        string
	ComparisonPrimary   string
	ComparisonSecondary string
	DashboardCacheTTL   time.Duration
	ReleaseCacheTTL     time.Duration
	Export              *ExportConfig
}

func Load() (*Config, error) {
	gh := DefaultGitHubConfig()
	gh.Token = getEnv("GITHUB_TOKEN", "")
	gh.APIBaseURL = getEnv("GITHUB_API_BASE_URL", gh.APIBaseURL)

	rps, err := strconv.ParseFloat(getEnv("GITHUB_REQUESTS_PER_SECOND", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GITHUB_REQUESTS_PER_SECOND: %w", err)
	}
	gh.RequestsPerSecond = rps

	maxRetries, err := getEnvInt("GITHUB_MAX_RETRIES", gh.RateLimit.MaxRetries)
	if err != nil {
		return nil, err
	}
	gh.RateLimit.MaxRetries = maxRetries

	dashboardTTL, err := getEnvInt("DASHBOARD_CACHE_TTL_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	releaseTTL, err := getEnvInt("RELEASE_CACHE_TTL_MINUTES", 0)
	if err != nil {
		return nil, err
	}

	export, err := loadExportConfig()
	if err != nil {
		return nil, err
	}

	repos := splitList(getEnv("GITHUB_REPOSITORIES", "daangn/stackflow,daangn/seed-design"))
	if len(repos) == 0 {
		return nil, fmt.Errorf("GITHUB_REPOSITORIES must name at least one repository")
	}

	primary := getEnv("COMPARISON_PRIMARY", repos[0])
	secondary := primary
	if len(repos) > 1 {
		secondary = repos[1]
	}
	secondary = getEnv("COMPARISON_SECONDARY", secondary)

	return &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		GitHub:              gh,
		Repositories:        repos,
		DefaultOwner:        getEnv("DEFAULT_OWNER", "daangn"),
		ComparisonPrimary:   primary,
		ComparisonSecondary: secondary,
		DashboardCacheTTL:   time.Duration(dashboardTTL) * time.Minute,
		ReleaseCacheTTL:     time.Duration(releaseTTL) * time.Minute,
		Export:              export,
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
