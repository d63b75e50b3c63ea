package dispatch

import (
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupDispatchRoutes(rg *gin.RouterGroup, cfg *config.Config, controller *Controller) {
	events := rg.Group("/events")
	events.Use(middleware.ServiceAuth(cfg, middleware.ScopeDevice, middleware.ScopeOps))
	{
		events.POST("", controller.IngestEvent) // POST /api/v1/events
	}

	admin := rg.Group("/admin/spots")
	admin.Use(middleware.ServiceAuth(cfg, middleware.ScopeOps))
	{
		admin.POST("/:id/reset", controller.ResetSpot) // POST /api/v1/admin/spots/:id/reset
	}
}
