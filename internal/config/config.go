package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	RedisURL  string
	RecordTTL time.Duration // zero keeps records forever

	LLMProvider      string
	ModelName        string
	SummaryModelName string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	BackendTimeout   time.Duration

	MetricsPort  string
	ScenarioPath string
	ScenarioDir  string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
		RecordTTL: parseDuration(getEnv("RECORD_TTL", "0"), 0),

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		ModelName:        getEnv("MODEL_NAME", "gpt-4o-mini"),
		SummaryModelName: getEnv("SUMMARY_MODEL_NAME", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		BackendTimeout:   parseDuration(getEnv("BACKEND_TIMEOUT", "120s"), 120*time.Second),

		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		ScenarioPath: getEnv("SCENARIO_PATH", "data/scenarios/drowned_bell.yaml"),
		ScenarioDir:  getEnv("SCENARIO_DIR", "data/scenarios"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	case "mock":
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.ModelName == "" && c.LLMProvider != "mock" {
		errs = append(errs, errors.New("MODEL_NAME is required"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the worker runs with the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts Go durations ("90s") or a bare number of seconds.
func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
