package llm

import "github.com/rootagent/rmk/internal/config"

// Options are the sampling settings shared by every provider client.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// OptionsFromConfig extracts sampling settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Model:       cfg.GetModel(),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	}
}
