package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shwepos/internal/notify"
	"shwepos/internal/server/middleware"
)

type DevicesHandler struct {
	registry *notify.Registry
}

func NewDevicesHandler(registry *notify.Registry) *DevicesHandler {
	return &DevicesHandler{registry: registry}
}

func deviceError(c *gin.Context, err error) {
	var validation *notify.DeviceValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, notify.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, errorResponse("device not found"))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("device operation failed"))
	}
}

func (h *DevicesHandler) Register(c *gin.Context) {
	var req notify.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}
	req.OwnerID = middleware.OwnerID(c)

	device, err := h.registry.Register(c.Request.Context(), req)
	if err != nil {
		deviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("device registered", device))
}

func (h *DevicesHandler) List(c *gin.Context) {
	devices, err := h.registry.ListForOwner(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		deviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("devices", devices))
}

func (h *DevicesHandler) UpdatePreferences(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid device id"))
		return
	}

	var req notify.DevicePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	device, err := h.registry.UpdatePreferences(c.Request.Context(), id, req)
	if err != nil {
		deviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("preferences updated", device))
}

func (h *DevicesHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid device id"))
		return
	}
	if err := h.registry.Deactivate(c.Request.Context(), id); err != nil {
		deviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("device deactivated", nil))
}
