package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	MQTT        MQTTConfig
	Admin       AdminConfig
	Maintenance MaintenanceConfig
	Ingestion   IngestionConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type JWTConfig struct {
	Secret       string
	ExpiryHours  int
	CookieName   string
	SecureCookie bool
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// MQTTConfig is optional; an empty Broker disables the activity publisher.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            int
	PublishTimeout time.Duration
}

// AdminConfig seeds a first admin account when the users table has none.
type AdminConfig struct {
	Username string
	Password string
}

type MaintenanceConfig struct {
	IntervalMonths int
}

// IngestionConfig drives telemetry alerting. It needs MQTT; an empty
// TelemetryTopic disables it.
type IngestionConfig struct {
	TelemetryTopic   string
	Workers          int
	BufferSize       int
	AlertCooldown    time.Duration
	CPUTempMaxC      float64
	DiskFreeMinPct   float64
	MemoryUsedMaxPct float64
	BatteryMinPct    int
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("JWT_EXPIRY_HOURS", 1)
	viper.SetDefault("JWT_COOKIE_NAME", "authToken")
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_MAX_AGE", 43200)
	viper.SetDefault("MQTT_CLIENT_ID", "it-asset-dashboard")
	viper.SetDefault("MQTT_TOPIC_PREFIX", "assets")
	viper.SetDefault("MQTT_QOS", 1)
	viper.SetDefault("MQTT_PUBLISH_TIMEOUT", 5*time.Second)
	viper.SetDefault("MAINTENANCE_INTERVAL_MONTHS", 6)
	viper.SetDefault("MQTT_TELEMETRY_TOPIC", "assets/devices/+/telemetry")
	viper.SetDefault("INGEST_WORKERS", 4)
	viper.SetDefault("INGEST_BUFFER_SIZE", 256)
	viper.SetDefault("ALERT_COOLDOWN", 15*time.Minute)
	viper.SetDefault("ALERT_CPU_TEMP_MAX_C", 85)
	viper.SetDefault("ALERT_DISK_FREE_MIN_PCT", 10)
	viper.SetDefault("ALERT_MEMORY_USED_MAX_PCT", 95)
	viper.SetDefault("ALERT_BATTERY_MIN_PCT", 20)
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			DBName:      viper.GetString("DB_NAME"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			ExpiryHours:  viper.GetInt("JWT_EXPIRY_HOURS"),
			CookieName:   viper.GetString("JWT_COOKIE_NAME"),
			SecureCookie: viper.GetString("ENVIRONMENT") == "production",
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			TopicPrefix:    viper.GetString("MQTT_TOPIC_PREFIX"),
			QoS:            viper.GetInt("MQTT_QOS"),
			PublishTimeout: viper.GetDuration("MQTT_PUBLISH_TIMEOUT"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Maintenance: MaintenanceConfig{
			IntervalMonths: viper.GetInt("MAINTENANCE_INTERVAL_MONTHS"),
		},
		Ingestion: IngestionConfig{
			TelemetryTopic:   viper.GetString("MQTT_TELEMETRY_TOPIC"),
			Workers:          viper.GetInt("INGEST_WORKERS"),
			BufferSize:       viper.GetInt("INGEST_BUFFER_SIZE"),
			AlertCooldown:    viper.GetDuration("ALERT_COOLDOWN"),
			CPUTempMaxC:      viper.GetFloat64("ALERT_CPU_TEMP_MAX_C"),
			DiskFreeMinPct:   viper.GetFloat64("ALERT_DISK_FREE_MIN_PCT"),
			MemoryUsedMaxPct: viper.GetFloat64("ALERT_MEMORY_USED_MAX_PCT"),
			BatteryMinPct:    viper.GetInt("ALERT_BATTERY_MIN_PCT"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
