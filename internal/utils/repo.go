package utils

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
)

// ParseRepoURL parses a GitHub repository URL into owner and name components
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository URL")
	}

	return parts[0], parts[1], nil
}

// ParseRepository splits an "owner/name" identifier. A full GitHub URL is
// accepted as well.
func ParseRepository(repository string) (owner, name string, err error) {
	repository = strings.TrimSpace(repository)
	if strings.Contains(repository, "://") {
		owner, name, err = ParseRepoURL(repository)
		if err != nil {
			return "", "", apperrors.NewValidationError(fmt.Sprintf("invalid repository %q", repository), err)
		}
		return owner, strings.TrimSuffix(name, ".git"), nil
	}

	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.NewValidationError(
			fmt.Sprintf("invalid repository %q: expected owner/name", repository), nil)
	}
	return parts[0], parts[1], nil
}

// QualifyRepository prefixes a bare repository name with defaultOwner
func QualifyRepository(repository, defaultOwner string) string {
	repository = strings.TrimSpace(repository)
	if repository == "" || strings.Contains(repository, "/") || defaultOwner == "" {
		return repository
	}
	return defaultOwner + "/" + repository
}
