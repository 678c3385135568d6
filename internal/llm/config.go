package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures a provider.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "mock" or "" (disabled).
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Retry       RetryConfig
}

// default models per provider, overridable with Config.Model
var defaultModels = map[string]string{
	"anthropic": "claude-haiku",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-flash",
}

// DefaultConfig returns the provider-less defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.2,
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ApplyEnv fills the API key from the provider's conventional environment variable
// when none was configured, and picks a provider from the first key found when
// Provider is empty.
func (c *Config) ApplyEnv() {
	envKeys := []struct{ provider, env string }{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
	}
	for _, k := range envKeys {
		v := os.Getenv(k.env)
		if v == "" {
			continue
		}
		if c.Provider == "" {
			c.Provider = k.provider
		}
		if c.Provider == k.provider && c.APIKey == "" {
			c.APIKey = v
		}
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Validate checks that the selected provider has its credentials.
func (c Config) Validate() error {
	switch c.Provider {
	case "", "mock":
		return nil
	case "anthropic", "openai", "gemini":
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
