package handler

import (
	"net/http"
	"strconv"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	"it-asset-dashboard/internal/middleware"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

// actorFromContext returns the authenticated user for activity attribution,
// or nil on unauthenticated routes.
func actorFromContext(c *gin.Context) *domainActivity.Actor {
	userID, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return nil
	}
	id, ok := userID.(uint)
	if !ok {
		return nil
	}
	return &domainActivity.Actor{
		UserID:   id,
		Username: c.GetString(middleware.UsernameKey),
	}
}

// parseIDParam reads a positive numeric path parameter and writes a 400 when
// it is malformed.
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.CodedErrorResponse(c, http.StatusBadRequest, appErrors.CodeValidation, "Invalid "+label+" ID", nil)
		return 0, false
	}
	return uint(id), true
}

func invalidBody(c *gin.Context, err error) {
	utils.CodedErrorResponse(c, http.StatusBadRequest, appErrors.CodeValidation, "Invalid request body", validationDetails(err))
}
