package handler

import (
	"net/http"

	"it-asset-dashboard/internal/usecase/maintenance"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	service *maintenance.Service
}

func NewMaintenanceHandler(service *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

func (h *MaintenanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	schedules := router.Group("/maintenance")
	{
		schedules.GET("", h.ListSchedules)
		schedules.GET("/:id", h.GetSchedule)
	}
}

func (h *MaintenanceHandler) RegisterEditorRoutes(router *gin.RouterGroup) {
	schedules := router.Group("/maintenance")
	{
		schedules.POST("", h.CreateSchedule)
		schedules.PUT("/:id", h.UpdateSchedule)
		schedules.DELETE("/:id", h.DeleteSchedule)
	}
}

func (h *MaintenanceHandler) ListSchedules(c *gin.Context) {
	var filter maintenance.ScheduleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), &filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", schedules)
}

func (h *MaintenanceHandler) GetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "schedule")
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", schedule)
}

func (h *MaintenanceHandler) CreateSchedule(c *gin.Context) {
	var req maintenance.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	created, err := h.service.CreateSchedule(c.Request.Context(), actorFromContext(c), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Maintenance schedule created successfully", created)
}

func (h *MaintenanceHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "schedule")
	if !ok {
		return
	}

	var req maintenance.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	updated, err := h.service.UpdateSchedule(c.Request.Context(), actorFromContext(c), id, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance schedule updated successfully", updated)
}

func (h *MaintenanceHandler) DeleteSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "schedule")
	if !ok {
		return
	}

	if err := h.service.DeleteSchedule(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance schedule deleted successfully", nil)
}
