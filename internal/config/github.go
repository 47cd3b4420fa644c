package config

import "time"

// GitHubConfig holds GitHub-specific configuration
type GitHubConfig struct {
	Token             string
	APIBaseURL        string
	PerPage           int
	RequestsPerSecond float64
	RateLimit         RateLimitConfig
}

// RateLimitConfig holds retry and rate limit configuration
type RateLimitConfig struct {
	MaxRetries      int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	RetryMultiplier float64
	// MaxRateLimitWaits bounds how many times a single request may wait for a quota reset.
	MaxRateLimitWaits int
	// MaxRateLimitWait is the longest single wait accepted before giving up.
	MaxRateLimitWait time.Duration
}

// DefaultGitHubConfig returns the default GitHub configuration
func DefaultGitHubConfig() *GitHubConfig {
	return &GitHubConfig{
		APIBaseURL:        "https://api.github.com/",
		PerPage:           100,
		RequestsPerSecond: 10,
		RateLimit: RateLimitConfig{
			MaxRetries:        3,
			InitialBackoff:    time.Second,
			MaxBackoff:        time.Minute,
			RetryMultiplier:   2.0,
			MaxRateLimitWaits: 3,
			MaxRateLimitWait:  time.Hour,
		},
	}
}
