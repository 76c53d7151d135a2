package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/media-batch-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	progress *app.Progress
	version  string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(progress *app.Progress, version string) *HealthHandler {
	return &HealthHandler{progress: progress, version: version}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Run     struct {
		ID      string `json:"id"`
		Running bool   `json:"running"`
	} `json:"run"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	snap := h.progress.Snapshot()
	response.Run.ID = snap.RunID
	response.Run.Running = snap.Running

	c.JSON(http.StatusOK, response)
}
