package config

import (
	"os"
	"path/filepath"
	"testing"

	rmkerr "github.com/rootagent/rmk/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "RMK_PROVIDER", "RMK_MODEL",
		"BASE_URL", "API_VERSION", "OPENAI_MODEL", "OLLAMA_HOST",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected provider openai, got %s", cfg.Provider)
	}
	if cfg.MaxTurns != 30 {
		t.Errorf("expected max turns 30, got %d", cfg.MaxTurns)
	}
	if cfg.MaxMessages != 100 {
		t.Errorf("expected max messages 100, got %d", cfg.MaxMessages)
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("expected max tokens 4096, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.7 || cfg.TopP != 0.95 {
		t.Errorf("unexpected sampling defaults %f/%f", cfg.Temperature, cfg.TopP)
	}
	if cfg.TrajDir != ".rmk/traj" {
		t.Errorf("expected traj dir .rmk/traj, got %s", cfg.TrajDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestGetModel(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		expected string
	}{
		{ProviderOpenAI, "", "gpt-4.1"},
		{ProviderAnthropic, "", "claude-sonnet-4-5-20250929"},
		{ProviderOllama, "", "llama3.1"},
		{ProviderOllama, "qwen2.5-coder", "qwen2.5-coder"},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = tt.provider
			cfg.Model = tt.model
			if got := cfg.GetModel(); got != tt.expected {
				t.Errorf("GetModel() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  bool
	}{
		{"unknown provider", func(c *Config) { c.Provider = "bard" }, true},
		{"unknown store", func(c *Config) { c.Store = "redis" }, true},
		{"zero turns", func(c *Config) { c.MaxTurns = 0 }, true},
		{"zero messages", func(c *Config) { c.MaxMessages = 0 }, true},
		{"sqlite ok", func(c *Config) { c.Store = StoreSQLite }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field && !rmkerr.HasCode(err, rmkerr.CodeConfigInvalid) {
				t.Errorf("expected config_invalid, got %v", err)
			}
			if !tt.field && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadExplicitFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := "provider: ollama\nmodel: qwen2.5-coder\nmax_turns: 7\nstore: sqlite\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOllama || cfg.Model != "qwen2.5-coder" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.MaxTurns != 7 {
		t.Errorf("expected max turns 7, got %d", cfg.MaxTurns)
	}
	if cfg.MaxMessages != 100 {
		t.Errorf("unset fields should keep defaults, got %d", cfg.MaxMessages)
	}
	if cfg.ConfigPath() != path {
		t.Errorf("ConfigPath() = %s", cfg.ConfigPath())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("provider: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !rmkerr.HasCode(err, rmkerr.CodeConfigLoadFailed) {
		t.Errorf("expected config_load_failed, got %v", err)
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigPath() != filepath.Join(".rmk", "config.yaml") {
		t.Errorf("ConfigPath() = %s", cfg.ConfigPath())
	}
	if _, err := os.Stat(filepath.Join(".rmk", "config.yaml")); err != nil {
		t.Errorf("default config not written: %v", err)
	}

	again, err := Load("")
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.MaxTurns != cfg.MaxTurns {
		t.Errorf("round trip changed max_turns: %d vs %d", again.MaxTurns, cfg.MaxTurns)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("BASE_URL", "http://proxy.local/v1")
	t.Setenv("OLLAMA_HOST", "127.0.0.1:11434")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey() != "sk-test" {
		t.Errorf("APIKey() = %q", cfg.APIKey())
	}
	if cfg.GetModel() != "gpt-4o-mini" {
		t.Errorf("OPENAI_MODEL not applied: %s", cfg.GetModel())
	}
	if cfg.BaseURL != "http://proxy.local/v1" {
		t.Errorf("BASE_URL not applied: %s", cfg.BaseURL)
	}
	if cfg.OllamaURL != "http://127.0.0.1:11434" {
		t.Errorf("OLLAMA_HOST not normalized: %s", cfg.OllamaURL)
	}

	t.Setenv("RMK_PROVIDER", "nope")
	if _, err := Load(""); err == nil {
		t.Error("expected invalid provider from env to fail validation")
	}
}
