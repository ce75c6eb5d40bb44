// Command finbrief answers a market research query with a team of agents: a
// web search specialist, a financial data specialist and a coordinator that
// merges their findings into one source-annotated Markdown brief.
//
// Usage:
//
//	finbrief [query...]
//
// Without arguments it runs the demo query about Apple's stock performance.
// Configuration comes from the environment (optionally a .env file); see the
// config package for the full list of variables.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"finbrief"
	"finbrief/config"
	"finbrief/logging"
	"finbrief/model"
	"finbrief/model/anthropic"
	"finbrief/model/groq"
	"finbrief/model/ollama"
	"finbrief/runner"
)

// runTimeout bounds the whole run: coordinator, delegations and tool calls.
const runTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logger := logging.New(level, cfg.LogFormat, false)

	logger.Info(
		"finbrief.start",
		"provider", cfg.Provider,
		"model", cfg.DefaultModel,
		"credential_loaded", cfg.HasCredential(),
	)

	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	team, err := finbrief.NewResearchTeam(m, func(o *finbrief.TeamOptions) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	query := finbrief.DefaultQuery
	if args := os.Args[1:]; len(args) > 0 {
		query = strings.Join(args, " ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	r := runner.New(team, func(o *runner.Options) {
		o.Logger = logger
	})

	return r.Print(ctx, query)
}

// buildModel constructs the model backend selected by the configuration.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGroq:
		return groq.NewModel(func(o *groq.Options) {
			o.APIKey = cfg.GroqAPIKey
			o.Model = cfg.DefaultModel
		}), nil

	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey

			if name := modelFor(cfg); name != "" {
				o.Model = anthropicsdk.Model(name)
			}
		}), nil

	case config.ProviderOllama:
		return ollama.NewModel(func(o *ollama.Options) {
			o.Host = cfg.OllamaHost

			if name := modelFor(cfg); name != "" {
				o.Model = name
			}
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// modelFor returns the model identifier for the selected provider. The
// shipped default names a Groq model, so other providers fall back to their
// own defaults unless the user overrode it.
func modelFor(cfg *config.Config) string {
	if cfg.DefaultModel == groq.DefaultModel && !strings.EqualFold(cfg.Provider, config.ProviderGroq) {
		return ""
	}

	return cfg.DefaultModel
}
