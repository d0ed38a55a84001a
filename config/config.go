package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Model    ModelConfig
	Log      LogConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        int
	RefreshExpiryHours int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

type ModelConfig struct {
	Path            string
	FallbackEnabled bool
}

type LogConfig struct {
	Mode string
}

type SyncConfig struct {
	IntervalSec int
	BatchSize   int
	MaxAttempts int
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	refreshExpiry, err := getIntEnv("JWT_REFRESH_EXPIRY_HOURS", 24*7)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY_HOURS: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	syncInterval, err := getIntEnv("USER_SYNC_INTERVAL_SEC", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_SYNC_INTERVAL_SEC: %w", err)
	}

	syncBatch, err := getIntEnv("USER_SYNC_BATCH_SIZE", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_SYNC_BATCH_SIZE: %w", err)
	}

	syncAttempts, err := getIntEnv("USER_SYNC_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_SYNC_MAX_ATTEMPTS: %w", err)
	}

	fallbackEnabled, err := getBoolEnv("MODEL_FALLBACK_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_FALLBACK_ENABLED: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "solar"),
			Password: getEnv("DB_PASSWORD", "solar_dev_password"),
			Name:     getEnv("DB_NAME", "solarpredict"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "solar-dev-secret-change-me"),
			ExpiryHours:        jwtExpiry,
			RefreshExpiryHours: refreshExpiry,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: ModelConfig{
			Path:            getEnv("MODEL_PATH", "artifacts/solar_power_model.json"),
			FallbackEnabled: fallbackEnabled,
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "dev"),
		},
		Sync: SyncConfig{
			IntervalSec: syncInterval,
			BatchSize:   syncBatch,
			MaxAttempts: syncAttempts,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
