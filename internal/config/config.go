package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rmkerr "github.com/rootagent/rmk/internal/errors"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in the provider field.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Store names accepted in the store field.
const (
	StoreJSONL  = "jsonl"
	StoreSQLite = "sqlite"
)

// RateLimitConfig holds proactive client-side throttling settings.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables request pacing
	Burst             int     `yaml:"burst"`
	TokensPerMinute   int     `yaml:"tokens_per_minute"` // 0 disables token budgeting
}

// Config holds the application configuration
type Config struct {
	Provider        string          `yaml:"provider"`
	Model           string          `yaml:"model"`
	MaxTokens       int             `yaml:"max_tokens"`
	Temperature     float64         `yaml:"temperature"`
	TopP            float64         `yaml:"top_p"`
	MaxTurns        int             `yaml:"max_turns"`
	MaxMessages     int             `yaml:"max_messages"`
	BaseURL         string          `yaml:"base_url,omitempty"`
	APIVersion      string          `yaml:"api_version,omitempty"`
	OllamaURL       string          `yaml:"ollama_url"`
	TrajDir         string          `yaml:"traj_dir"`
	LogDir          string          `yaml:"log_dir"`
	RulesFile       string          `yaml:"rules_file"`
	PlanFile        string          `yaml:"plan_file"`
	Store           string          `yaml:"store"`
	SQLitePath      string          `yaml:"sqlite_path"`
	Shell           string          `yaml:"shell"`
	ToolOutputLimit int             `yaml:"tool_output_limit"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`

	// From environment only
	OpenAIKey    string `yaml:"-"`
	AnthropicKey string `yaml:"-"`

	configPath string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderOpenAI,
		MaxTokens:       4096,
		Temperature:     0.7,
		TopP:            0.95,
		MaxTurns:        30,
		MaxMessages:     100,
		OllamaURL:       "http://localhost:11434",
		TrajDir:         ".rmk/traj",
		LogDir:          ".rmk/logs",
		RulesFile:       ".rmk/rules/system.md",
		PlanFile:        ".rmk/plan.md",
		Store:           StoreJSONL,
		SQLitePath:      ".rmk/sessions.db",
		Shell:           "bash",
		ToolOutputLimit: 50000,
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 1,
			Burst:             1,
			TokensPerMinute:   30000,
		},
	}
}

// Load loads configuration from the first config file found, then applies
// environment overrides. When explicit is non-empty only that file is read.
// With no file anywhere a default .rmk/config.yaml is written.
func Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()

	if explicit != "" {
		if err := cfg.loadFromFile(explicit); err != nil {
			return nil, rmkerr.ConfigLoadFailed(explicit, err)
		}
		cfg.configPath = explicit
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := cfg.loadFromFile(path); err != nil {
					return nil, rmkerr.ConfigLoadFailed(path, err)
				}
				cfg.configPath = path
				break
			}
		}
	}

	if cfg.configPath == "" {
		if err := cfg.createDefault(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"rmk.yaml",
		".rmk/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rmk", "config.yaml"))
	}

	return paths
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) createDefault() error {
	dir := ".rmk"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	c.configPath = path

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# rmk configuration\n# API keys are read from OPENAI_API_KEY / ANTHROPIC_API_KEY.\n\n" + string(data)
	return os.WriteFile(path, []byte(content), 0644)
}

// applyEnv overlays environment variables on top of file values.
func (c *Config) applyEnv() {
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")

	if v := os.Getenv("RMK_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("API_VERSION"); v != "" {
		c.APIVersion = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		if !strings.Contains(v, "://") {
			v = "http://" + v
		}
		c.OllamaURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" && c.Provider == ProviderOpenAI {
		c.Model = v
	}
	if v := os.Getenv("RMK_MODEL"); v != "" {
		c.Model = v
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
	default:
		return rmkerr.ConfigInvalid("provider", fmt.Sprintf("unknown provider %q", c.Provider))
	}
	switch c.Store {
	case StoreJSONL, StoreSQLite:
	default:
		return rmkerr.ConfigInvalid("store", fmt.Sprintf("unknown store %q", c.Store))
	}
	if c.MaxTurns <= 0 {
		return rmkerr.ConfigInvalid("max_turns", "must be positive")
	}
	if c.MaxMessages <= 0 {
		return rmkerr.ConfigInvalid("max_messages", "must be positive")
	}
	if c.MaxTokens <= 0 {
		return rmkerr.ConfigInvalid("max_tokens", "must be positive")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond < 0 {
		return rmkerr.ConfigInvalid("rate_limit.requests_per_second", "must not be negative")
	}
	return nil
}

// GetModel returns the configured model, or the provider's default.
func (c *Config) GetModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	case ProviderOllama:
		return "llama3.1"
	default:
		return "gpt-4.1"
	}
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicKey
	case ProviderOpenAI:
		return c.OpenAIKey
	default:
		return ""
	}
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}
