package spots

import (
	"errors"
	"net/http"

	"parkwise/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListSpots(ctx *gin.Context) {
	spots := c.service.ListSpots(ctx.Request.Context())
	response.RespondJSON(ctx, "success", http.StatusOK, "Spots retrieved successfully", spots, nil)
}

func (c *Controller) ListFreeSpots(ctx *gin.Context) {
	spots := c.service.ListFreeSpots(ctx.Request.Context())
	response.RespondJSON(ctx, "success", http.StatusOK, "Free spots retrieved successfully", spots, nil)
}

func (c *Controller) GetSpot(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Spot ID is required", nil, "missing spot ID")
		return
	}

	spot, err := c.service.GetSpot(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to get spot", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spot retrieved successfully", spot, nil)
}

func (c *Controller) GetOccupancy(ctx *gin.Context) {
	summary := c.service.Occupancy(ctx.Request.Context())
	response.RespondJSON(ctx, "success", http.StatusOK, "Occupancy retrieved successfully", summary, nil)
}
