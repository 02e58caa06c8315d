package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Policy PolicyConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr     string
	GRPCAddr     string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
}

// LLMConfig holds settings for the OpenAI-compatible document model
type LLMConfig struct {
	BaseURL       string
	Model         string
	APIKey        string
	Temperature   float32
	Timeout       time.Duration
	MaxDocumentMB int
}

// PolicyConfig points at an optional YAML classification policy
type PolicyConfig struct {
	File string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:     getEnv("LEVELS_HTTP_ADDR", ":8080"),
			GRPCAddr:     getEnv("LEVELS_GRPC_ADDR", ":9090"),
			MaxBodyBytes: getEnvAsInt64("LEVELS_MAX_BODY_BYTES", 32<<20),
			ReadTimeout:  getEnvAsDuration("LEVELS_READ_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
			MaxDocumentMB: getEnvAsInt("LEVELS_MAX_DOCUMENT_MB", 20),
		},
		Policy: PolicyConfig{
			File: getEnv("LEVELS_POLICY_FILE", ""),
		},
		Log: LogConfig{
			Level: getEnvAsLevel("LEVELS_LOG_LEVEL", slog.LevelInfo),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return lvl
}

// Validate validates the loaded configuration. The API key is only required when the
// document endpoint is served; requireLLM says whether it is.
func (c *Config) Validate(requireLLM bool) error {
	if c.Server.HTTPAddr == "" && c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "LEVELS_HTTP_ADDR or LEVELS_GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "LEVELS_MAX_BODY_BYTES must be positive", ErrInvalidInput)
	}
	if requireLLM && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return NewAppError("CONFIG_ERROR", "OPENAI_TEMPERATURE must be within 0..2", ErrInvalidInput)
	}
	if c.LLM.MaxDocumentMB <= 0 {
		return NewAppError("CONFIG_ERROR", "LEVELS_MAX_DOCUMENT_MB must be positive", ErrInvalidInput)
	}
	return nil
}
