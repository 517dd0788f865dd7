package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"maitred/internal/cache"
	"maitred/internal/database"
	"maitred/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Grid defaults for the day sheet
	GridStartHour       int
	GridEndHour         int
	GridPixelsPerMinute float64

	// Pacing fallback when no shift ticket override applies
	PacingDefaultLimit int
	PacingDisabled     bool

	Database      database.Config
	NATS          messaging.Config
	Valkey        cache.Config
	Elasticsearch ElasticsearchConfig
}

// Load reads configuration from the environment, with .env as a convenience
// for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		GridStartHour:       getEnvInt("GRID_START_HOUR", 8),
		GridEndHour:         getEnvInt("GRID_END_HOUR", 24),
		GridPixelsPerMinute: getEnvFloat("GRID_PIXELS_PER_MINUTE", 2),

		PacingDefaultLimit: getEnvInt("PACING_DEFAULT_LIMIT", 40),
		PacingDisabled:     getEnvBool("PACING_DISABLED", false),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "maitred"),
			Password:           getEnv("DB_PASSWORD", "maitred123"),
			DBName:             getEnv("DB_NAME", "maitred"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "maitred"),
			ClientID:  getEnv("NATS_CLIENT_ID", "maitred-api"),
		},

		Valkey: cache.Config{
			Addr:         getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:     os.Getenv("VALKEY_PASSWORD"),
			UsersHashKey: getEnv("VALKEY_USERS_HASH_KEY", "staff:auth"),
		},

		Elasticsearch: LoadElasticsearchConfig(),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
