package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/media-batch-go/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(runID, logicalID string, status domain.Status, at time.Time) *domain.AcquisitionRecord {
	return domain.NewAcquisitionRecord(runID, domain.Outcome{
		Item:       domain.AcquisitionItem{LogicalID: logicalID, SourceURL: "https://youtu.be/" + logicalID},
		Status:     status,
		Message:    "test",
		FinishedAt: at,
	})
}

func TestSQLiteHistoryRepository_SaveAndFindByRun(t *testing.T) {
	repo := openTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.SaveRecord(record("run-1", "p1", domain.StatusOK, now)))
	require.NoError(t, repo.SaveRecord(record("run-1", "p2", domain.StatusError, now.Add(time.Second))))
	require.NoError(t, repo.SaveRecord(record("run-2", "p3", domain.StatusSkipped, now.Add(2*time.Second))))

	records, err := repo.FindByRun("run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p1", records[0].LogicalID)
	assert.Equal(t, "p2", records[1].LogicalID)
}

func TestSQLiteHistoryRepository_Stats(t *testing.T) {
	repo := openTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.SaveRecord(record("run-1", "p1", domain.StatusOK, now)))
	require.NoError(t, repo.SaveRecord(record("run-1", "p2", domain.StatusOK, now)))
	require.NoError(t, repo.SaveRecord(record("run-1", "p3", domain.StatusSkipped, now)))
	require.NoError(t, repo.SaveRecord(record("run-1", "p4", domain.StatusError, now)))

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.OK)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(1), stats.Errors)
}

func TestSQLiteHistoryRepository_RecentRuns(t *testing.T) {
	repo := openTestRepo(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, repo.SaveRecord(record("run-old", "p1", domain.StatusOK, base)))
	require.NoError(t, repo.SaveRecord(record("run-old", "p2", domain.StatusError, base.Add(time.Minute))))
	require.NoError(t, repo.SaveRecord(record("run-new", "p3", domain.StatusOK, base.Add(30*time.Minute))))

	runs, err := repo.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[1].RunID)
	assert.Equal(t, int64(2), runs[1].Total)
	assert.Equal(t, int64(1), runs[1].OK)
	assert.Equal(t, int64(1), runs[1].Errors)

	limited, err := repo.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-new", limited[0].RunID)
}
