package handler

import (
	"errors"
	"fmt"
	"net/http"

	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/logger"
	"it-asset-dashboard/internal/middleware"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const codeUnauthorized = "UNAUTHORIZED"

var codeStatus = map[string]int{
	appErrors.CodeNotFound:      http.StatusNotFound,
	appErrors.CodeValidation:    http.StatusBadRequest,
	appErrors.CodeMissingFields: http.StatusBadRequest,
	appErrors.CodeInvalidDates:  http.StatusBadRequest,
	appErrors.CodeInvalidStatus: http.StatusBadRequest,
	appErrors.CodeDeviceExists:  http.StatusConflict,
	appErrors.CodeScheduleOpen:  http.StatusConflict,
}

// respondWithError maps service errors onto the JSON error envelope.
// Anything unrecognised is logged and reported as a 500 without detail.
func respondWithError(c *gin.Context, err error) {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		status, known := codeStatus[appErr.Code]
		switch {
		case known:
		case errors.Is(err, appErrors.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, appErrors.ErrInvalidInput):
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}

		if status == http.StatusInternalServerError {
			internalError(c, err)
			return
		}

		details := appErr.Details
		if details == nil {
			details = validationDetails(appErr.Err)
		}
		utils.CodedErrorResponse(c, status, appErr.Code, appErr.Message, details)
		return
	}

	switch {
	case errors.Is(err, domainDevice.ErrDeviceNotFound):
		utils.CodedErrorResponse(c, http.StatusNotFound, appErrors.CodeNotFound, "Device not found", nil)
	case errors.Is(err, domainMaintenance.ErrScheduleNotFound):
		utils.CodedErrorResponse(c, http.StatusNotFound, appErrors.CodeNotFound, "Maintenance schedule not found", nil)
	case errors.Is(err, appErrors.ErrUserNotFound):
		utils.CodedErrorResponse(c, http.StatusNotFound, appErrors.CodeNotFound, "User not found", nil)
	case errors.Is(err, appErrors.ErrNotFound):
		utils.CodedErrorResponse(c, http.StatusNotFound, appErrors.CodeNotFound, "Resource not found", nil)
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		utils.CodedErrorResponse(c, http.StatusUnauthorized, codeUnauthorized, "Invalid username or password", nil)
	case errors.Is(err, appErrors.ErrInvalidToken), errors.Is(err, appErrors.ErrUnauthorized):
		utils.CodedErrorResponse(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required", nil)
	case errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, appErrors.ErrInvalidInput):
		utils.CodedErrorResponse(c, http.StatusBadRequest, appErrors.CodeValidation, "Invalid request", nil)
	default:
		internalError(c, err)
	}
}

func internalError(c *gin.Context, err error) {
	logger.WithRequestID(middleware.GetRequestID(c)).Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
}

// validationDetails lists the failing fields of a validator error, or nil.
func validationDetails(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	details := make([]string, len(ve))
	for i, fe := range ve {
		details[i] = fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
	return details
}
