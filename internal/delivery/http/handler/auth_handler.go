package handler

import (
	"net/http"
	"time"

	"it-asset-dashboard/internal/config"
	"it-asset-dashboard/internal/middleware"
	"it-asset-dashboard/internal/usecase/user"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *user.Service
	cookie  config.JWTConfig
}

func NewAuthHandler(service *user.Service, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: jwtCfg}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

// RegisterProtectedRoutes expects the group to run AuthMiddleware.
func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/auth/verify-token", h.VerifyToken)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	req.Username = utils.SanitizeString(req.Username)

	authResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	maxAge := int(time.Until(time.Unix(authResponse.ExpiresAt, 0)).Seconds())
	h.setCookie(c, authResponse.Token, maxAge)

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *AuthHandler) VerifyToken(c *gin.Context) {
	userID, ok := c.Get(middleware.UserIDKey)
	id, isUint := userID.(uint)
	if !ok || !isUint {
		respondWithError(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token is valid", gin.H{"user": profile})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	utils.SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", "", h.cookie.SecureCookie, true)
}
