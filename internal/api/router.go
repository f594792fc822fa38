package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fastbreakhq/fastbreak/internal/api/handlers"
	"github.com/fastbreakhq/fastbreak/internal/api/middleware"
	"github.com/fastbreakhq/fastbreak/internal/identity"
	"github.com/fastbreakhq/fastbreak/internal/services"
	"github.com/fastbreakhq/fastbreak/internal/storage"
	"github.com/fastbreakhq/fastbreak/internal/strength"
	"github.com/fastbreakhq/fastbreak/pkg/config"
)

// Dependencies carries the wired services the routes are built from.
type Dependencies struct {
	Config       *config.Config
	Boards       *services.BoardService
	Scheduler    *services.SchedulerService
	Identity     *identity.Builder
	Strength     *strength.Builder
	FeatureStore *storage.FeatureStore
	Snapshots    *storage.SnapshotStore
	Limiter      *services.RequestRateLimiter
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	predictionsHandler := handlers.NewPredictionsHandler(deps.Boards)
	playersHandler := handlers.NewPlayersHandler(deps.Identity, deps.FeatureStore)
	strengthHandler := handlers.NewStrengthHandler(deps.Strength, deps.Snapshots)

	if deps.Limiter != nil {
		group.Use(middleware.RateLimit(deps.Limiter))
	}

	// Prediction boards
	group.GET("/predictions/tomorrow", predictionsHandler.GetTomorrow)
	group.GET("/predictions/:date", predictionsHandler.GetByDate)

	// Player identity and feature history
	group.GET("/players/:name", playersHandler.GetPlayer)

	// Opponent strength
	group.GET("/strength", strengthHandler.GetStrength)
	group.GET("/strength/snapshots/latest", strengthHandler.GetLatestSnapshot)
}
