package handler

import (
	"net/http"

	"it-asset-dashboard/internal/usecase/device"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	service *device.Service
}

func NewDeviceHandler(service *device.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.GET("/:id", h.GetDevice)
		devices.GET("/:id/schedules", h.ListSchedules)
		devices.GET("/:id/alerts", h.ListAlerts)
	}
}

// RegisterEditorRoutes mounts the mutating routes; the caller guards the
// group with the editor role check.
func (h *DeviceHandler) RegisterEditorRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("", h.CreateDevice)
		devices.PUT("/:id", h.UpdateDevice)
		devices.DELETE("/:id", h.DeleteDevice)
	}
}

func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req device.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	created, err := h.service.CreateDevice(c.Request.Context(), actorFromContext(c), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Device created successfully", created)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "device")
	if !ok {
		return
	}

	found, err := h.service.GetDevice(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", found)
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	var filter device.DeviceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	devices, err := h.service.ListDevices(c.Request.Context(), &filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", devices)
}

func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "device")
	if !ok {
		return
	}

	var req device.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	updated, err := h.service.UpdateDevice(c.Request.Context(), actorFromContext(c), id, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device updated successfully", updated)
}

func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "device")
	if !ok {
		return
	}

	deleted, err := h.service.DeleteDevice(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device deleted successfully", deleted)
}

func (h *DeviceHandler) ListSchedules(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "device")
	if !ok {
		return
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", schedules)
}

func (h *DeviceHandler) ListAlerts(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "device")
	if !ok {
		return
	}

	alerts, err := h.service.ListAlerts(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", alerts)
}
