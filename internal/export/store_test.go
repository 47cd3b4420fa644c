package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamar-Folarin/release-dashboard/internal/models"
)

func newJob(id string) *models.ExportJob {
	return &models.ExportJob{ID: id, Status: models.ExportPending}
}

func TestStore_ProgressNeverDecreases(t *testing.T) {
	store := NewStore()
	store.Add(newJob("a"))
	now := time.Now()

	require.NoError(t, store.Advance("a", models.ExportProcessing, 50, now))
	require.NoError(t, store.Advance("a", models.ExportProcessing, 30, now))

	job, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, 50, job.Progress)
	assert.Equal(t, models.ExportProcessing, job.Status)
}

func TestStore_TerminalStatesAreFinal(t *testing.T) {
	store := NewStore()
	store.Add(newJob("done"))
	store.Add(newJob("broken"))
	now := time.Now()

	require.NoError(t, store.Complete("done", "f.csv", "/download/f.csv", now))
	assert.ErrorIs(t, store.Advance("done", models.ExportProcessing, 10, now), ErrJobFinished)
	assert.ErrorIs(t, store.Fail("done", "late failure", now), ErrJobFinished)

	job, _ := store.Get("done")
	assert.Equal(t, models.ExportCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Empty(t, job.Error)

	require.NoError(t, store.Advance("broken", models.ExportProcessing, 30, now))
	require.NoError(t, store.Fail("broken", "boom", now))
	assert.ErrorIs(t, store.Complete("broken", "f.csv", "/download/f.csv", now), ErrJobFinished)

	job, _ = store.Get("broken")
	assert.Equal(t, models.ExportFailed, job.Status)
	assert.Equal(t, 30, job.Progress)
	assert.Equal(t, "boom", job.Error)
}

func TestStore_UnknownJob(t *testing.T) {
	store := NewStore()
	assert.ErrorIs(t, store.Advance("missing", models.ExportProcessing, 10, time.Now()), ErrJobNotFound)
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Add(newJob("a"))

	job, _ := store.Get("a")
	job.Progress = 99

	again, _ := store.Get("a")
	assert.Equal(t, 0, again.Progress)
}

func TestStore_Prune(t *testing.T) {
	store := NewStore()
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	for _, id := range []string{"old", "recent", "running"} {
		store.Add(newJob(id))
	}
	require.NoError(t, store.Complete("old", "a.csv", "/a.csv", old))
	require.NoError(t, store.Fail("recent", "boom", recent))
	require.NoError(t, store.Advance("running", models.ExportProcessing, 10, old))

	removed := store.Prune(time.Now().Add(-24 * time.Hour))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("old")
	assert.False(t, ok)
	_, ok = store.Get("running")
	assert.True(t, ok)
}
