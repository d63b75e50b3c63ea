package dispatch

import (
	"errors"
	"net/http"

	"parkwise/internal/shared/utils/response"
	"parkwise/internal/spots"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// IngestEvent handles POST /events from gate cameras and spot sensors.
func (c *Controller) IngestEvent(ctx *gin.Context) {
	var event Event
	if err := ctx.ShouldBindJSON(&event); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event payload", nil, err.Error())
		return
	}

	outcome, err := c.service.HandleEvent(ctx.Request.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedEvent):
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Malformed lot event", nil, err.Error())
		case errors.Is(err, spots.ErrNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Unknown spot", nil, err.Error())
		case errors.Is(err, spots.ErrConflict):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Spot state conflict", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to process event", nil, err.Error())
		}
		return
	}

	if outcome.LotFull {
		response.RespondJSON(ctx, "success", http.StatusOK, "Lot is full, no spot assigned", outcome, nil)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Event processed successfully", outcome, nil)
}

// ResetSpot handles POST /admin/spots/:id/reset from the ops surface.
func (c *Controller) ResetSpot(ctx *gin.Context) {
	spotID := ctx.Param("id")
	if spotID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Spot ID is required", nil, "missing spot id")
		return
	}

	var body struct {
		Location *spots.Location `json:"location"`
	}
	// Body is optional; a bare reset keeps the known location.
	_ = ctx.ShouldBindJSON(&body)

	outcome, err := c.service.HandleEvent(ctx.Request.Context(), Event{
		SpotID:   spotID,
		Status:   wireStatusReset,
		Location: body.Location,
	})
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to reset spot", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Spot reset successfully", outcome, nil)
}
