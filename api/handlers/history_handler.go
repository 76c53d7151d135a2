package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/internal/domain"
)

const defaultRunLimit = 20

// HistoryHandler serves persisted outcomes from past runs
type HistoryHandler struct {
	repo domain.HistoryRepository
	log  *zap.Logger
}

// NewHistoryHandler creates a new history handler. A nil repository means
// history is disabled; every endpoint then answers 503.
func NewHistoryHandler(repo domain.HistoryRepository, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, log: log}
}

func (h *HistoryHandler) disabled(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return true
	}
	return false
}

// ListRuns handles GET /api/v1/history/runs
func (h *HistoryHandler) ListRuns(c *gin.Context) {
	if h.disabled(c) {
		return
	}

	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	runs, err := h.repo.RecentRuns(limit)
	if err != nil {
		h.log.Error("Failed to list runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun handles GET /api/v1/history/runs/:id
func (h *HistoryHandler) GetRun(c *gin.Context) {
	if h.disabled(c) {
		return
	}

	runID := c.Param("id")
	records, err := h.repo.FindByRun(runID)
	if err != nil {
		h.log.Error("Failed to load run", zap.String("run_id", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "records": records})
}

// GetStats handles GET /api/v1/history/stats
func (h *HistoryHandler) GetStats(c *gin.Context) {
	if h.disabled(c) {
		return
	}

	stats, err := h.repo.Stats()
	if err != nil {
		h.log.Error("Failed to load stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
