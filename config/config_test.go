package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads. t.Setenv first, so the
// original values come back after the test; envconfig only applies
// defaults to variables that are truly unset.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"GROQ_API_KEY",
		"ANTHROPIC_API_KEY",
		"OLLAMA_HOST",
		"FINBRIEF_PROVIDER",
		"FINBRIEF_DEFAULT_MODEL",
		"FINBRIEF_LOG_LEVEL",
		"FINBRIEF_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.DefaultModel)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.GroqAPIKey)
	assert.Empty(t, cfg.AnthropicAPIKey)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OLLAMA_HOST", "http://ollama.internal:11434")
	t.Setenv("FINBRIEF_PROVIDER", "anthropic")
	t.Setenv("FINBRIEF_DEFAULT_MODEL", "claude-3-5-sonnet-20241022")
	t.Setenv("FINBRIEF_LOG_LEVEL", "debug")
	t.Setenv("FINBRIEF_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	want := &Config{
		GroqAPIKey:      "gsk_test",
		AnthropicAPIKey: "sk-ant-test",
		OllamaHost:      "http://ollama.internal:11434",
		Provider:        "anthropic",
		DefaultModel:    "claude-3-5-sonnet-20241022",
		LogLevel:        "debug",
		LogFormat:       "json",
	}
	assert.Equal(t, want, cfg)
}

func TestLoadIsRepeatable(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("FINBRIEF_PROVIDER", "groq")

	first, err := Load()
	require.NoError(t, err)

	second, err := Load()
	require.NoError(t, err)

	// Same environment, same configuration.
	assert.Equal(t, first, second)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "groq with key",
			cfg:  Config{Provider: "groq", GroqAPIKey: "gsk_test"},
		},
		{
			name:    "groq without key",
			cfg:     Config{Provider: "groq"},
			wantErr: "GROQ_API_KEY is required",
		},
		{
			name: "anthropic with key",
			cfg:  Config{Provider: "anthropic", AnthropicAPIKey: "sk-ant-test"},
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: "ANTHROPIC_API_KEY is required",
		},
		{
			name: "ollama needs no credential",
			cfg:  Config{Provider: "ollama"},
		},
		{
			name: "provider is case insensitive",
			cfg:  Config{Provider: "Groq", GroqAPIKey: "gsk_test"},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "bedrock"},
			wantErr: `unknown provider "bedrock"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHasCredential(t *testing.T) {
	assert.True(t, (&Config{Provider: "groq", GroqAPIKey: "gsk_test"}).HasCredential())
	assert.False(t, (&Config{Provider: "groq"}).HasCredential())
	assert.True(t, (&Config{Provider: "anthropic", AnthropicAPIKey: "k"}).HasCredential())
	assert.False(t, (&Config{Provider: "anthropic"}).HasCredential())
	assert.True(t, (&Config{Provider: "ollama"}).HasCredential())
}
