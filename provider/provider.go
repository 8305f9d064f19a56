package provider

import (
	"context"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/models"
	openai_provider "github.com/scourbot/scour/provider/openai"
)

// Provider is the interface the research loop uses to talk to the
// completion backend. Implementations return the raw text of the first
// choice; availability problems surface as errors and are degraded to
// empty output by the caller.
type Provider interface {
	Chat(ctx context.Context, messages []models.Message) (string, error)
}

// NewProvider creates a completion client from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return openai_provider.NewClient(
		cfg.BaseURL,
		cfg.APIKey,
		cfg.Model,
		cfg.Temperature,
		cfg.MaxTokens,
		cfg.Timeout,
	), nil
}
