package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/media-batch-go/api/handlers"
	"github.com/yourusername/media-batch-go/api/middleware"
	"github.com/yourusername/media-batch-go/internal/app"
	"github.com/yourusername/media-batch-go/internal/domain"
)

// SetupRouter sets up the HTTP router for the live status API
func SetupRouter(
	progress *app.Progress,
	repo domain.HistoryRepository,
	version string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	healthHandler := handlers.NewHealthHandler(progress, version)
	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		runHandler := handlers.NewRunHandler(progress)
		run := v1.Group("/run")
		{
			run.GET("", runHandler.GetRun)
			run.GET("/items", runHandler.GetItems)
		}

		historyHandler := handlers.NewHistoryHandler(repo, log)
		history := v1.Group("/history")
		{
			history.GET("/runs", historyHandler.ListRuns)
			history.GET("/runs/:id", historyHandler.GetRun)
			history.GET("/stats", historyHandler.GetStats)
		}
	}

	return router
}
