package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/media-batch-go/internal/app"
)

// RunHandler exposes the live state of the current batch run
type RunHandler struct {
	progress *app.Progress
}

// NewRunHandler creates a new run handler
func NewRunHandler(progress *app.Progress) *RunHandler {
	return &RunHandler{progress: progress}
}

// GetRun handles GET /api/v1/run
func (h *RunHandler) GetRun(c *gin.Context) {
	c.JSON(http.StatusOK, h.progress.Snapshot())
}

// GetItems handles GET /api/v1/run/items
func (h *RunHandler) GetItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"run_id": h.progress.RunID(),
		"items":  h.progress.Items(),
	})
}
