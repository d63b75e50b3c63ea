package spots

import (
	"github.com/gin-gonic/gin"
)

func SetupSpotRoutes(rg *gin.RouterGroup, controller *Controller) {
	spots := rg.Group("/spots")
	{
		spots.GET("", controller.ListSpots)              // GET /api/v1/spots
		spots.GET("/free", controller.ListFreeSpots)     // GET /api/v1/spots/free
		spots.GET("/occupancy", controller.GetOccupancy) // GET /api/v1/spots/occupancy
		spots.GET("/:id", controller.GetSpot)            // GET /api/v1/spots/:id
	}
}
