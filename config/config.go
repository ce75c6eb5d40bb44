// Package config loads runtime settings for the finbrief binary from the
// environment. Configuration is read exactly once by Load and passed around
// as an explicit struct; nothing consults environment variables afterwards.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Model provider identifiers accepted in FINBRIEF_PROVIDER.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds every runtime setting the finbrief binary needs.
type Config struct {
	GroqAPIKey      string `envconfig:"GROQ_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	OllamaHost      string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`

	Provider     string `envconfig:"FINBRIEF_PROVIDER" default:"groq"`
	DefaultModel string `envconfig:"FINBRIEF_DEFAULT_MODEL" default:"llama-3.3-70b-versatile"`

	LogLevel  string `envconfig:"FINBRIEF_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"FINBRIEF_LOG_FORMAT" default:"text"`
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present, matching local development
// workflows; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the selected provider has the credential it needs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when FINBRIEF_PROVIDER=%s", ProviderGroq)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when FINBRIEF_PROVIDER=%s", ProviderAnthropic)
		}
	case ProviderOllama:
		// Local backend, no credential needed.
	default:
		return fmt.Errorf(
			"unknown provider %q (expected %s, %s or %s)",
			c.Provider, ProviderGroq, ProviderAnthropic, ProviderOllama,
		)
	}

	return nil
}

// HasCredential reports whether the credential for the selected provider is
// set. Ollama runs locally and never needs one.
func (c *Config) HasCredential() bool {
	switch strings.ToLower(c.Provider) {
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	case ProviderOllama:
		return true
	default:
		return c.GroqAPIKey != ""
	}
}
