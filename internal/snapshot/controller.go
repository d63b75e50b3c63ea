package snapshot

import (
	"net/http"

	"parkwise/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	publisher *Publisher
}

func NewController(publisher *Publisher) *Controller {
	return &Controller{publisher: publisher}
}

// GetLotState handles GET /lot/snapshot for dashboards and displays.
func (c *Controller) GetLotState(ctx *gin.Context) {
	state, err := c.publisher.Get(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load lot snapshot", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Lot snapshot retrieved successfully", state, nil)
}

func SetupSnapshotRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/lot/snapshot", controller.GetLotState) // GET /api/v1/lot/snapshot
}
