package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	LLMTimeout   time.Duration
	APIPort      string
	LogLevel     slog.Level
	LogFormat    string
}

// ConfigError is returned by Load when a setting is missing or malformed.
// It is fatal: the server must not start without a valid configuration.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded;
// variables already set in the environment take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LLMBaseURL:   strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.groq.com/openai"), "/"),
		LLMModelName: getEnv("LLM_MODEL", "llama-3.2-3b-preview"),
		LLMAPIKey:    getEnv("GROQ_API_KEY", ""),
		APIPort:      getEnv("API_PORT", "8501"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LLMAPIKey == "" {
		return nil, &ConfigError{Key: "GROQ_API_KEY", Message: "is required"}
	}

	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", "60s"))
	if err != nil {
		return nil, &ConfigError{Key: "LLM_TIMEOUT", Message: fmt.Sprintf("must be a valid duration: %v", err)}
	}
	if timeout <= 0 {
		return nil, &ConfigError{Key: "LLM_TIMEOUT", Message: "must be greater than 0"}
	}
	cfg.LLMTimeout = timeout

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, &ConfigError{Key: "LOG_LEVEL", Message: err.Error()}
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, &ConfigError{Key: "LOG_FORMAT", Message: fmt.Sprintf("unsupported format %q", cfg.LogFormat)}
	}

	return cfg, nil
}

// loadDotEnv loads the nearest .env file, searching the working directory
// and up to four parent directories. A missing file is not an error.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
