// Package config loads the supportbot runtime configuration from YAML with
// environment variable expansion and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the top-level configuration.
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Agent      AgentConfig      `yaml:"agent"`
	Escalation EscalationConfig `yaml:"escalation"`
	Harness    HarnessConfig    `yaml:"harness"`
	Log        LogConfig        `yaml:"log"`
}

// ModelConfig selects and tunes the language model endpoint.
type ModelConfig struct {
	Provider    string        `yaml:"provider"`
	Name        string        `yaml:"name"` // empty selects the provider default
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	APIKey      string        `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AgentConfig bounds a single agent run.
type AgentConfig struct {
	RecursionLimit int           `yaml:"recursion_limit"`
	ToolTimeout    time.Duration `yaml:"tool_timeout"`
	StrictTools    bool          `yaml:"strict_tools"`
}

// EscalationConfig names the environment variables holding the Telegram
// secrets. The secrets themselves are read when the tool is invoked.
type EscalationConfig struct {
	TokenEnv  string `yaml:"token_env"`
	ChatIDEnv string `yaml:"chat_id_env"`
	APIServer string `yaml:"api_server"`
}

// HarnessConfig configures fixture runs.
type HarnessConfig struct {
	Fixtures    string `yaml:"fixtures"`
	Parallelism int    `yaml:"parallelism"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Provider:    ProviderGemini,
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		Agent: AgentConfig{
			RecursionLimit: 10,
			ToolTimeout:    15 * time.Second,
		},
		Escalation: EscalationConfig{
			TokenEnv:  "TELEGRAM_BOT_TOKEN",
			ChatIDEnv: "TELEGRAM_CHAT_ID",
		},
		Harness: HarnessConfig{
			Parallelism: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of Default(). Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing so secrets can
// live in the environment (e.g. loaded from a .env file).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	switch c.Model.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	case "":
		return fmt.Errorf("config: model provider is required")
	default:
		return fmt.Errorf("config: unknown model provider %q", c.Model.Provider)
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("config: model temperature %v out of range [0, 2]", c.Model.Temperature)
	}
	if c.Model.Timeout < 0 {
		return fmt.Errorf("config: model timeout must not be negative")
	}
	if c.Agent.RecursionLimit < 1 {
		return fmt.Errorf("config: agent recursion_limit must be at least 1, got %d", c.Agent.RecursionLimit)
	}
	if c.Agent.ToolTimeout < 0 {
		return fmt.Errorf("config: agent tool_timeout must not be negative")
	}
	if c.Escalation.TokenEnv == "" || c.Escalation.ChatIDEnv == "" {
		return fmt.Errorf("config: escalation token_env and chat_id_env are required")
	}
	if c.Harness.Parallelism < 1 {
		return fmt.Errorf("config: harness parallelism must be at least 1, got %d", c.Harness.Parallelism)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
