package routes

import (
	"net/http"

	"it-asset-dashboard/internal/config"
	"it-asset-dashboard/internal/delivery/http/handler"
	domainActivity "it-asset-dashboard/internal/domain/activity"
	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	domainUser "it-asset-dashboard/internal/domain/user"
	"it-asset-dashboard/internal/infrastructure/database/postgres"
	"it-asset-dashboard/internal/logger"
	"it-asset-dashboard/internal/middleware"
	"it-asset-dashboard/internal/usecase/activity"
	"it-asset-dashboard/internal/usecase/dashboard"
	"it-asset-dashboard/internal/usecase/device"
	"it-asset-dashboard/internal/usecase/maintenance"
	"it-asset-dashboard/internal/usecase/user"

	"github.com/gin-gonic/gin"
)

// Repositories is the storage the HTTP surface is built on.
type Repositories struct {
	Devices   domainDevice.Repository
	Schedules domainMaintenance.Repository
	Alerts    domainAlert.Repository
	Users     domainUser.Repository
	Activity  domainActivity.Repository
}

// HealthCheck reports whether the service can reach its dependencies.
type HealthCheck func() error

func SetupRoutes(cfg *config.Config, db *postgres.DB, recorder domainActivity.Recorder) *gin.Engine {
	repos := Repositories{
		Devices:   postgres.NewDeviceRepository(db),
		Schedules: postgres.NewScheduleRepository(db),
		Alerts:    postgres.NewAlertRepository(db),
		Users:     postgres.NewUserRepository(db),
		Activity:  postgres.NewActivityRepository(db),
	}
	return NewRouter(cfg, repos, recorder, db.Health)
}

func NewRouter(cfg *config.Config, repos Repositories, recorder domainActivity.Recorder, health HealthCheck) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order matters: request ID first so every later log line carries it.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.JWT.SecureCookie))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	healthHandler := func(c *gin.Context) {
		if health != nil {
			if err := health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"message": "Database connection failed",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	}
	router.GET("/health", healthHandler)

	deviceService := device.NewService(repos.Devices, repos.Schedules, repos.Alerts, recorder,
		device.WithMaintenanceInterval(cfg.Maintenance.IntervalMonths),
	)
	maintenanceService := maintenance.NewService(repos.Schedules, repos.Devices, recorder)
	userService := user.NewService(repos.Users, cfg.JWT)

	authHandler := handler.NewAuthHandler(userService, cfg.JWT)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	activityHandler := handler.NewActivityHandler(activity.NewService(repos.Activity))
	dashboardHandler := handler.NewDashboardHandler(dashboard.NewService(repos.Devices, repos.Schedules, repos.Alerts))

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler)
		authHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(&cfg.JWT))
		{
			authHandler.RegisterProtectedRoutes(protected)
			deviceHandler.RegisterRoutes(protected)
			maintenanceHandler.RegisterRoutes(protected)
			activityHandler.RegisterRoutes(protected)
			dashboardHandler.RegisterRoutes(protected)

			editors := protected.Group("")
			editors.Use(middleware.EditorsOnly())
			{
				deviceHandler.RegisterEditorRoutes(editors)
				maintenanceHandler.RegisterEditorRoutes(editors)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
