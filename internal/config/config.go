package config

import (
	"os"
	"strconv"
	"time"

	"ecgdx/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig
	Model     ModelConfig
	Artifacts ArtifactConfig
	Server    ServerConfig
	Database  DatabaseConfig
}

// PipelineConfig holds the operator-tunable knobs the core honors
type PipelineConfig struct {
	SamplingRate  float64 // Hz, default 360 (MIT-BIH)
	SegmentLength int     // samples per heartbeat segment, must be even
	BatchSize     int     // rows per classifier call
}

// ModelConfig holds classifier service settings
type ModelConfig struct {
	URL     string
	Timeout time.Duration
}

// ArtifactConfig points at the serving artifacts fixed at training time
type ArtifactConfig struct {
	Dir string // directory holding scaler.json and classes.json
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        string
	MaxUploadMB int64
}

// DatabaseConfig holds the optional history store settings
type DatabaseConfig struct {
	URL string // empty disables diagnosis history
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Pipeline: PipelineConfig{
			SamplingRate:  getEnvFloatOrDefault("SAMPLING_RATE", 360),
			SegmentLength: getEnvIntOrDefault("SEGMENT_LENGTH", 250),
			BatchSize:     getEnvIntOrDefault("BATCH_SIZE", 100),
		},
		Model: ModelConfig{
			URL:     os.Getenv("MODEL_URL"),
			Timeout: getEnvDurationOrDefault("MODEL_TIMEOUT", 30*time.Second),
		},
		Artifacts: ArtifactConfig{
			Dir: getEnvOrDefault("ARTIFACTS_DIR", "./artifacts"),
		},
		Server: ServerConfig{
			Port:        getEnvOrDefault("PORT", "8080"),
			MaxUploadMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 100)),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Pipeline.SamplingRate <= 0 {
		return errors.ConfigInvalid("SAMPLING_RATE must be positive")
	}
	if cfg.Pipeline.SegmentLength <= 0 || cfg.Pipeline.SegmentLength%2 != 0 {
		return errors.ConfigInvalid("SEGMENT_LENGTH must be a positive even number")
	}
	if cfg.Pipeline.BatchSize <= 0 {
		return errors.ConfigInvalid("BATCH_SIZE must be positive")
	}
	if cfg.Model.URL == "" {
		return errors.ConfigInvalid("MODEL_URL is required")
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
