package drivers

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

func (c *Controller) ListDrivers(ctx *gin.Context) {
	all, err := c.service.List(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list drivers", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Drivers retrieved successfully", all, nil)
}

func (c *Controller) GetDriver(ctx *gin.Context) {
	plate := ctx.Param("plate")
	if plate == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "License plate is required", nil, "missing license plate")
		return
	}

	profile, err := c.service.Lookup(ctx.Request.Context(), plate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Driver not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get driver", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver retrieved successfully", profile, nil)
}

func (c *Controller) RegisterDriver(ctx *gin.Context) {
	var driver Driver
	if err := ctx.ShouldBindJSON(&driver); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.Register(ctx.Request.Context(), &driver); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to register driver", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Driver registered successfully", driver, nil)
}

func (c *Controller) RemoveDriver(ctx *gin.Context) {
	plate := ctx.Param("plate")
	if plate == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "License plate is required", nil, "missing license plate")
		return
	}

	if err := c.service.Remove(ctx.Request.Context(), plate); err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to remove driver", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver removed successfully", nil, nil)
}
