package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"it-asset-dashboard/internal/config"
	domainActivity "it-asset-dashboard/internal/domain/activity"
	"it-asset-dashboard/internal/infrastructure/database/postgres"
	"it-asset-dashboard/internal/ingestion"
	"it-asset-dashboard/internal/logger"
	"it-asset-dashboard/internal/routes"
	"it-asset-dashboard/internal/usecase/activity"
	"it-asset-dashboard/internal/usecase/user"
	"it-asset-dashboard/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := user.NewService(postgres.NewUserRepository(db), cfg.JWT).EnsureAdmin(bootCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Error("Failed to bootstrap admin account", zap.Error(err))
	}
	bootCancel()

	sinks := []domainActivity.Sink{postgres.NewActivityRepository(db)}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Broker != "" {
		mqttClient = mqtt.NewClient(&mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			CleanSession:         true,
			KeepAlive:            30,
			ConnectTimeout:       10,
			AutoReconnect:        true,
			MaxReconnectInterval: time.Minute,
			PublishTimeout:       cfg.MQTT.PublishTimeout,
		})
		if err := mqttClient.Connect(); err != nil {
			// Activity still reaches the database without the broker.
			logger.Warn("MQTT unavailable, activity events will not be published", zap.Error(err))
			mqttClient = nil
		} else {
			sinks = append(sinks, activity.NewMQTTSink(mqttClient, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS)))
		}
	}

	recorder := activity.NewAsyncRecorder(cfg.MQTT.PublishTimeout, sinks...)

	var (
		telemetry *ingestion.MQTTIngestionClient
		processor *ingestion.Processor
	)
	if mqttClient != nil && cfg.Ingestion.TelemetryTopic != "" {
		processor, telemetry = startTelemetryIngestion(cfg, db, mqttClient)
	}

	router := routes.SetupRoutes(cfg, db, recorder)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "3000"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	if telemetry != nil {
		telemetry.Stop()
	}
	if processor != nil {
		processor.Stop()
		m := processor.GetMetrics()
		logger.Info("Telemetry ingestion stopped",
			zap.Int64("received", m.MessagesReceived),
			zap.Int64("processed", m.MessagesProcessed),
			zap.Int64("failed", m.MessagesFailed),
			zap.Int64("dropped", m.MessagesDropped),
			zap.Int64("alerts", m.AlertsGenerated),
		)
	}

	// Drain pending activity before the database and broker go away.
	if err := recorder.Close(ctx); err != nil {
		logger.Warn("Activity recorder did not drain before shutdown", zap.Error(err))
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}

	logger.Info("Server exited properly")
}

// startTelemetryIngestion subscribes to device telemetry. A failed subscribe
// is logged and leaves the API running without alert ingestion.
func startTelemetryIngestion(cfg *config.Config, db *postgres.DB, client *mqtt.Client) (*ingestion.Processor, *ingestion.MQTTIngestionClient) {
	ing := cfg.Ingestion
	engine := ingestion.NewAlertEngine(postgres.NewAlertRepository(db), ingestion.Thresholds{
		CPUTempMaxC:      ing.CPUTempMaxC,
		DiskFreeMinPct:   ing.DiskFreeMinPct,
		MemoryUsedMaxPct: ing.MemoryUsedMaxPct,
		BatteryMinPct:    ing.BatteryMinPct,
	})
	processor := ingestion.NewProcessor(postgres.NewDeviceRepository(db), engine, ingestion.ProcessorConfig{
		Workers:    ing.Workers,
		BufferSize: ing.BufferSize,
		Cooldown:   ing.AlertCooldown,
	})
	processor.Start()

	subscriber, err := ingestion.NewMQTTIngestionClient(client, ing.TelemetryTopic, byte(cfg.MQTT.QoS), processor)
	if err == nil {
		err = subscriber.Start()
	}
	if err != nil {
		logger.Error("Telemetry ingestion disabled", zap.Error(err))
		processor.Stop()
		return nil, nil
	}
	return processor, subscriber
}
