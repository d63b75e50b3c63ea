package drivers

import (
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupDriverRoutes(rg *gin.RouterGroup, cfg *config.Config, controller *Controller) {
	admin := rg.Group("/admin/drivers")
	admin.Use(middleware.ServiceAuth(cfg, middleware.ScopeOps))
	{
		admin.GET("", controller.ListDrivers)            // GET /api/v1/admin/drivers
		admin.GET("/:plate", controller.GetDriver)       // GET /api/v1/admin/drivers/:plate
		admin.POST("", controller.RegisterDriver)        // POST /api/v1/admin/drivers
		admin.DELETE("/:plate", controller.RemoveDriver) // DELETE /api/v1/admin/drivers/:plate
	}
}
