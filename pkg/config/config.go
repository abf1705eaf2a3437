package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	apperrors "agent-proxy/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// LLM peer
	LiteLLMURL       string
	ModelID          string
	OpenRouterAPIKey string

	// Turn controller
	HumanInputMode string // ALWAYS, TERMINATE or NEVER
	MaxAutoReply   int    // consecutive auto replies before gating
	UseSandbox     bool   // whether code execution asks for a sandbox
	WorkDir        string // working directory for code execution
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LiteLLMURL:       getEnv("LITELLM_URL", "http://localhost:4000"),
		ModelID:          getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		HumanInputMode:   getEnv("HUMAN_INPUT_MODE", "ALWAYS"),
		MaxAutoReply:     getEnvInt("MAX_AUTO_REPLY", 0),
		UseSandbox:       getEnvBool("USE_SANDBOX", true),
		WorkDir:          getEnv("WORK_DIR", "workspace"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.LiteLLMURL == "" {
		return apperrors.NewConfigMissingRequired("LITELLM_URL")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigMissingRequired("MODEL_ID")
	}
	switch c.HumanInputMode {
	case "ALWAYS", "TERMINATE", "NEVER":
	default:
		return apperrors.NewUnknownInputMode(c.HumanInputMode)
	}
	// OpenRouter API key is optional; LiteLLM accepts a dummy key
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}
