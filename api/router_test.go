package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/domain"
	"github.com/yourusername/media-batch-go/internal/infrastructure"
)

func setupTestServer(t *testing.T) (*httptest.Server, *app.Progress, domain.HistoryRepository) {
	t.Helper()

	repo, err := infrastructure.NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	progress := app.NewProgress()
	router := SetupRouter(progress, repo, "test", zap.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, progress, repo
}

func getJSON(t *testing.T, url string, target interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func TestAPI_Health(t *testing.T) {
	server, progress, _ := setupTestServer(t)

	var body struct {
		Status string `json:"status"`
		Run    struct {
			ID      string `json:"id"`
			Running bool   `json:"running"`
		} `json:"run"`
	}
	status := getJSON(t, server.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, progress.RunID(), body.Run.ID)
	assert.True(t, body.Run.Running)
}

func TestAPI_RunSnapshot(t *testing.T) {
	server, progress, _ := setupTestServer(t)

	items := []domain.AcquisitionItem{
		{LogicalID: "a", SourceURL: "https://youtu.be/a"},
		{LogicalID: "b", SourceURL: "https://youtu.be/b"},
	}
	progress.Begin(items)
	progress.Observe(domain.Outcome{Item: items[0], Status: domain.StatusOK})

	var snap app.ProgressSnapshot
	status := getJSON(t, server.URL+"/api/v1/run", &snap)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Summary.OK)
}

func TestAPI_RunItems(t *testing.T) {
	server, progress, _ := setupTestServer(t)

	progress.Begin([]domain.AcquisitionItem{
		{LogicalID: "a", SourceURL: "https://youtu.be/a"},
	})

	var body struct {
		RunID string          `json:"run_id"`
		Items []app.ItemState `json:"items"`
	}
	status := getJSON(t, server.URL+"/api/v1/run/items", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "a", body.Items[0].LogicalID)
	assert.False(t, body.Items[0].Done)
}

func TestAPI_HistoryRuns(t *testing.T) {
	server, _, repo := setupTestServer(t)

	out := domain.Outcome{
		Item:       domain.AcquisitionItem{LogicalID: "a", SourceURL: "https://youtu.be/a"},
		Status:     domain.StatusOK,
		FinishedAt: time.Now(),
	}
	require.NoError(t, repo.SaveRecord(domain.NewAcquisitionRecord("run-1", out)))

	var body struct {
		Runs []domain.RunSummary `json:"runs"`
	}
	status := getJSON(t, server.URL+"/api/v1/history/runs", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "run-1", body.Runs[0].RunID)
}

func TestAPI_HistoryRunNotFound(t *testing.T) {
	server, _, _ := setupTestServer(t)
	status := getJSON(t, server.URL+"/api/v1/history/runs/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_HistoryRunsBadLimit(t *testing.T) {
	server, _, _ := setupTestServer(t)
	status := getJSON(t, server.URL+"/api/v1/history/runs?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_HistoryDisabled(t *testing.T) {
	progress := app.NewProgress()
	router := SetupRouter(progress, nil, "test", zap.NewNop())
	server := httptest.NewServer(router)
	defer server.Close()

	status := getJSON(t, server.URL+"/api/v1/history/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
