package llm

import (
	"context"
	"fmt"

	"jobforge/internal/config"
	"jobforge/internal/llm/providers"
)

// NewProvider builds the adapter for one model/key pair. The provider
// name comes from configuration, not from the key itself, so the same
// rotation machinery works for any upstream.
func NewProvider(ctx context.Context, mc config.ModelConfig, apiKey string, maxTokens int, temperature float32) (Provider, error) {
	switch mc.Provider {
	case "claude", "anthropic":
		return providers.NewClaudeProvider(apiKey, mc.Model, maxTokens, temperature), nil
	case "gemini", "google":
		return providers.NewGeminiProvider(ctx, apiKey, mc.Model, maxTokens, temperature)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", mc.Provider)
	}
}
