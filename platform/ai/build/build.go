// Package build constructs a concrete ai.Provider from configuration.
package build

import (
	"context"
	"fmt"

	"receptionist_backend/platform/ai"
	"receptionist_backend/platform/ai/fake"
	"receptionist_backend/platform/ai/gemini"
	"receptionist_backend/platform/ai/openai"
)

// Config selects and configures a provider.
type Config struct {
	Provider      string
	Model         string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
}

// New builds the provider named in cfg.Provider. Supported values are
// "openai", "gemini" and "fake".
func New(ctx context.Context, cfg Config) (ai.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
		})
	case "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.Model,
		})
	case "fake", "":
		return fake.New(), nil
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
