// Package config provides configuration for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL  string
	MaxQueryRows int

	// Reasoning service
	AnthropicURL    string
	AnthropicAPIKey string
	ReasoningModel  string
	TranslatorModel string
	MaxTokens       int

	// Model artifact
	ModelArtifactPath string

	// Orchestration limits
	MaxTurns int

	// Timeouts
	LLMTimeout   time.Duration
	QueryTimeout time.Duration

	// Logging
	LogLevel string
	LogFile  string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8000),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/hdb?sslmode=disable"),
		MaxQueryRows:      getEnvInt("MAX_QUERY_ROWS", 500),
		AnthropicURL:      getEnv("ANTHROPIC_URL", "https://api.anthropic.com"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		ReasoningModel:    getEnv("REASONING_MODEL", "claude-3-7-sonnet-20250219"),
		TranslatorModel:   getEnv("TRANSLATOR_MODEL", "claude-3-haiku-20240307"),
		MaxTokens:         getEnvInt("MAX_TOKENS", 4000),
		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "artifacts/resale_price_model.json"),
		MaxTurns:          getEnvInt("MAX_TURNS", 10),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		QueryTimeout:      time.Duration(getEnvInt("QUERY_TIMEOUT_MS", 15000)) * time.Millisecond,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
