package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"aireliance/internal/errors"
)

// Sink kinds
const (
	SinkHTTP     = "http"
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"
)

// Config represents the complete experiment server configuration
type Config struct {
	Server     ServerConfig
	Experiment ExperimentConfig
	Oracle     OracleConfig
	Sink       SinkConfig
	Database   DatabaseConfig
	LogLevel   string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ExperimentConfig holds the trial schedule and claim source
type ExperimentConfig struct {
	TotalTrials      int
	AIEligibleTrials int
	ClaimsFile       string
	Seed             int64 // 0 means a fresh random seed per session

	// Retention is how long a completed session stays in memory
	Retention time.Duration
}

// OracleConfig holds the AI answer relay settings
type OracleConfig struct {
	URL           string
	Timeout       time.Duration
	MaxConcurrent int
}

// SinkConfig selects and configures the results backend
type SinkConfig struct {
	Kind    string
	URL     string
	Timeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RelayConfig configures the AI answer relay binary
type RelayConfig struct {
	Port        string
	OpenAIKey   string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	LogLevel    string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:     *loadServerConfig(),
		Experiment: *loadExperimentConfig(),
		Oracle:     *loadOracleConfig(),
		Sink:       *loadSinkConfig(),
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadExperimentConfig() *ExperimentConfig {
	return &ExperimentConfig{
		TotalTrials:      getEnvIntOrDefault("TOTAL_TRIALS", 20),
		AIEligibleTrials: getEnvIntOrDefault("AI_ELIGIBLE_TRIALS", 10),
		ClaimsFile:       getEnvOrDefault("CLAIMS_FILE", ""),
		Seed:             int64(getEnvIntOrDefault("SESSION_SEED", 0)),
		Retention:        getEnvDurationOrDefault("SESSION_RETENTION", 2*time.Hour),
	}
}

func loadOracleConfig() *OracleConfig {
	return &OracleConfig{
		URL:           getEnvOrDefault("ORACLE_URL", ""),
		Timeout:       getEnvDurationOrDefault("ORACLE_TIMEOUT", 15*time.Second),
		MaxConcurrent: getEnvIntOrDefault("ORACLE_MAX_CONCURRENT", 8),
	}
}

func loadSinkConfig() *SinkConfig {
	return &SinkConfig{
		Kind:    strings.ToLower(getEnvOrDefault("SINK_KIND", SinkHTTP)),
		URL:     getEnvOrDefault("SINK_URL", ""),
		Timeout: getEnvDurationOrDefault("SINK_TIMEOUT", 10*time.Second),
	}
}

func validateConfig(config *Config) error {
	if config.Oracle.URL == "" {
		return errors.ConfigInvalid("ORACLE_URL is required")
	}
	if config.Oracle.MaxConcurrent <= 0 {
		return errors.ConfigInvalid("ORACLE_MAX_CONCURRENT must be positive")
	}
	if config.Experiment.TotalTrials < 0 {
		return errors.ConfigInvalid("TOTAL_TRIALS cannot be negative")
	}
	if config.Experiment.AIEligibleTrials < 0 {
		return errors.ConfigInvalid("AI_ELIGIBLE_TRIALS cannot be negative")
	}
	if config.Experiment.Retention <= 0 {
		return errors.ConfigInvalid("SESSION_RETENTION must be positive")
	}
	if config.Experiment.TotalTrials > 0 && config.Experiment.AIEligibleTrials > config.Experiment.TotalTrials {
		return errors.ConfigInvalid("AI_ELIGIBLE_TRIALS cannot exceed TOTAL_TRIALS")
	}

	switch config.Sink.Kind {
	case SinkHTTP, SinkSheets:
		if config.Sink.URL == "" {
			return errors.ConfigInvalid(fmt.Sprintf("SINK_URL is required for sink kind %q", config.Sink.Kind))
		}
	case SinkPostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres sink")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown SINK_KIND %q", config.Sink.Kind))
	}
	return nil
}

// LoadRelay reads the AI answer relay configuration
func LoadRelay() (*RelayConfig, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is required")
	}

	return &RelayConfig{
		Port:        getEnvOrDefault("RELAY_PORT", "3001"),
		OpenAIKey:   openaiKey,
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.3),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 150),
		Timeout:     getEnvDurationOrDefault("RELAY_TIMEOUT", 30*time.Second),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "INFO"),
	}, nil
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
