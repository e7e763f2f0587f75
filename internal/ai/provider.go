package ai

import (
	"context"
	"fmt"
)

// AIProvider is the interface that all LLM providers must implement.
type AIProvider interface {
	// WelcomeIntro writes the personalised opening paragraph of the
	// welcome email for a newly registered user.
	WelcomeIntro(ctx context.Context, profile Profile) (string, error)

	// SummarizeNews writes a short market overview of the given articles
	// for the daily news email.
	SummarizeNews(ctx context.Context, articles []NewsEntry) (string, error)
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (AIProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
