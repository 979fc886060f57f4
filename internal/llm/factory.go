package llm

import (
	"context"
	"fmt"
	"strings"

	"interpagent/internal/logging"
)

// ParseProvider normalizes a provider name. Empty means OpenAI.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(ProviderOpenAI):
		return ProviderOpenAI, nil
	case string(ProviderGemini):
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// NewClient builds the client for cfg.Provider. No request is made.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	provider, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	logging.BootDebug("Creating %s client: model=%s base_url=%s", provider, cfg.Model, cfg.BaseURL)

	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return NewOpenAIClient(cfg), nil
	}
}
