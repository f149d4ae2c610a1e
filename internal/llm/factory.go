package llm

import (
	"fmt"

	"github.com/rootagent/rmk/internal/config"
	rmkerr "github.com/rootagent/rmk/internal/errors"
)

// NewClient builds the client for cfg.Provider, wrapped in a
// RateLimitedClient when rate limiting is enabled.
func NewClient(cfg *config.Config) (LLMClient, error) {
	opts := OptionsFromConfig(cfg)

	var client LLMClient
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIKey == "" && cfg.BaseURL == "" {
			return nil, rmkerr.ConfigInvalid("OPENAI_API_KEY", "environment variable is required")
		}
		client = NewOpenAIClient(cfg.OpenAIKey, cfg.BaseURL, cfg.APIVersion, opts)
	case config.ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, rmkerr.ConfigInvalid("ANTHROPIC_API_KEY", "environment variable is required")
		}
		client = NewAnthropicClient(cfg.AnthropicKey, cfg.BaseURL, opts)
	case config.ProviderOllama:
		oc, err := NewOllamaClient(cfg.OllamaURL, opts)
		if err != nil {
			return nil, err
		}
		client = oc
	default:
		return nil, rmkerr.ConfigInvalid("provider", fmt.Sprintf("unknown provider %q", cfg.Provider))
	}

	if cfg.RateLimit.Enabled {
		client = NewRateLimitedClient(client, cfg.RateLimit)
	}
	return client, nil
}
