package config

import (
	"fmt"
	"os"
	"strconv"

	"donorscan/internal/logger"
)

type Config struct {
	// Persistence
	DatabaseURL string

	// Upload / image storage
	UploadDir string

	// HTTP server
	ListenAddr string

	// HubSpot Configuration (optional; matching is skipped when empty)
	HubSpotAPIKey string

	// Rasterization
	RasterDPI int

	// Tunable pipeline thresholds
	SecondaryConfidenceThreshold float64
	MatchConfidenceThreshold     float64
	AmountTolerance              float64
	NameSimilarityCutoff         float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DatabaseURL:                  getEnv("DATABASE_URL", ""),
		UploadDir:                    getEnv("UPLOAD_DIR", "uploads"),
		ListenAddr:                   getEnv("LISTEN_ADDR", ":8080"),
		HubSpotAPIKey:                getEnv("HUBSPOT_API_KEY", ""),
		RasterDPI:                    getEnvInt("RASTER_DPI", 300),
		SecondaryConfidenceThreshold: getEnvFloat("OCR_SECONDARY_CONFIDENCE_THRESHOLD", 0.75),
		MatchConfidenceThreshold:     getEnvFloat("MATCH_CONFIDENCE_THRESHOLD", 0.8),
		AmountTolerance:              getEnvFloat("OCR_AMOUNT_TOLERANCE", 0.01),
		NameSimilarityCutoff:         getEnvFloat("OCR_NAME_SIMILARITY_CUTOFF", 0.7),
		LogLevel:                     getEnv("LOG_LEVEL", "info"),
		LogFormat:                    getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:                getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                    getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.SecondaryConfidenceThreshold < 0 || c.SecondaryConfidenceThreshold > 1 {
		return fmt.Errorf("OCR_SECONDARY_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	if c.MatchConfidenceThreshold < 0 || c.MatchConfidenceThreshold > 1 {
		return fmt.Errorf("MATCH_CONFIDENCE_THRESHOLD must be within [0,1]")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
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
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
