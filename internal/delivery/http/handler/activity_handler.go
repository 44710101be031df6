package handler

import (
	"net/http"

	"it-asset-dashboard/internal/usecase/activity"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service *activity.Service
}

func NewActivityHandler(service *activity.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/activity-logs", h.ListActivity)
}

func (h *ActivityHandler) ListActivity(c *gin.Context) {
	var req activity.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	logs, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", logs)
}
