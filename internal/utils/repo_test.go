package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Kamar-Folarin/release-dashboard/internal/errors"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		owner    string
		repo     string
		hasError bool
	}{
		{name: "owner and name", input: "daangn/stackflow", owner: "daangn", repo: "stackflow"},
		{name: "surrounding whitespace", input: "  daangn/seed-design ", owner: "daangn", repo: "seed-design"},
		{name: "full URL", input: "https://github.com/daangn/stackflow.git", owner: "daangn", repo: "stackflow"},
		{name: "bare name", input: "stackflow", hasError: true},
		{name: "empty owner", input: "/stackflow", hasError: true},
		{name: "too many parts", input: "a/b/c", hasError: true},
		{name: "empty", input: "", hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepository(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsValidationError(err))
				assert.Empty(t, owner)
				assert.Empty(t, repo)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestParseRepoURL(t *testing.T) {
	owner, repo, err := ParseRepoURL("https://github.com/test-owner/test-repo/")
	assert.NoError(t, err)
	assert.Equal(t, "test-owner", owner)
	assert.Equal(t, "test-repo", repo)

	_, _, err = ParseRepoURL("https://github.com/test-owner")
	assert.Error(t, err)
}

func TestQualifyRepository(t *testing.T) {
	assert.Equal(t, "daangn/stackflow", QualifyRepository("stackflow", "daangn"))
	assert.Equal(t, "other/stackflow", QualifyRepository("other/stackflow", "daangn"))
	assert.Equal(t, "", QualifyRepository(" ", "daangn"))
	assert.Equal(t, "stackflow", QualifyRepository("stackflow", ""))
}
