package config

import (
	"os"
	"strconv"
	"time"

	"data4viz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AIConfig holds LLM provider settings. The default endpoint is Groq's
// OpenAI-compatible API.
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// StorageConfig holds workspace file storage settings
type StorageConfig struct {
	DataDir string
}

// DatabaseConfig holds the optional Postgres workspace registry settings
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds the ops/pprof listener settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		AI: AIConfig{
			APIKey:      os.Getenv("GROQ_API_KEY"),
			Model:       getEnvOrDefault("LLM_MODEL", "llama-3.1-8b-instant"),
			BaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1500),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
			Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "./workspaces"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.AI.APIKey == "" {
		return errors.ConfigInvalid("GROQ_API_KEY is required")
	}
	if cfg.Storage.DataDir == "" {
		return errors.ConfigInvalid("DATA_DIR must not be empty")
	}
	if cfg.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("MAX_TOKENS must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
