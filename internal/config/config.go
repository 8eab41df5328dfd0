package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server    ServerConfig
	Extractor ExtractorConfig
	Download  DownloadConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Mode            string
	ShutdownTimeout time.Duration
}

type ExtractorConfig struct {
	// HTTPTimeout bounds every extractor request, stream reads included. Zero means no limit.
	HTTPTimeout time.Duration
}

type DownloadConfig struct {
	// Dir is where suggested file paths point, relative to the working directory unless absolute.
	Dir             string
	Extension       string
	RelayBufferSize int
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "4000")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.Mode = getEnv("GIN_MODE", "release")
	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("invalid GIN_MODE: %q", cfg.Server.Mode)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.Server.ShutdownTimeout = shutdownTimeout

	// Extractor configuration
	httpTimeout, err := time.ParseDuration(getEnv("EXTRACTOR_HTTP_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTOR_HTTP_TIMEOUT: %w", err)
	}
	if httpTimeout < 0 {
		return nil, fmt.Errorf("invalid EXTRACTOR_HTTP_TIMEOUT: must not be negative")
	}
	cfg.Extractor.HTTPTimeout = httpTimeout

	// Download configuration
	cfg.Download.Dir = getEnv("DOWNLOAD_DIR", "downloads")
	cfg.Download.Extension = strings.TrimPrefix(getEnv("DOWNLOAD_EXTENSION", "mp4"), ".")
	cfg.Download.RelayBufferSize = getEnvInt("RELAY_BUFFER_SIZE", 32*1024)
	if cfg.Download.RelayBufferSize <= 0 {
		return nil, fmt.Errorf("invalid RELAY_BUFFER_SIZE: must be positive")
	}

	// CORS configuration
	cfg.CORS = loadCORSConfig()

	// Logging configuration
	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", "json"))
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.Log.Format)
	}

	return cfg, nil
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
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// loadCORSConfig allows every origin unless CORS_ALLOWED_ORIGINS narrows it down.
func loadCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{
			"GET", "POST", "PUT", "OPTIONS",
		}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept", "X-Correlation-ID",
		}),
		ExposedHeaders: getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{
			"Content-Disposition", "X-Correlation-ID", "X-Request-ID",
		}),
		MaxAge: getEnvInt("CORS_MAX_AGE", 86400),
	}
}
