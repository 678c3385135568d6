package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/llm"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// TTL applies to cached progress summaries; session keys never expire.
		TTL string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		Retry       struct {
			MaxAttempts int     `yaml:"max_attempts"`
			InitialWait string  `yaml:"initial_wait"`
			MaxWait     string  `yaml:"max_wait"`
			Multiplier  float64 `yaml:"multiplier"`
		} `yaml:"retry"`
	} `yaml:"llm"`
	Evaluation struct {
		Timeout         string `yaml:"timeout"`
		MinAnswerLength int    `yaml:"min_answer_length"`
	} `yaml:"evaluation"`
	Questions struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"questions"`
	Analytics analytics.Thresholds `yaml:"analytics"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Redis.TTL = "10m"
	cfg.Questions.CacheTTL = "10m"
	cfg.Evaluation.Timeout = evaluation.DefaultConfig().Timeout.String()
	cfg.Evaluation.MinAnswerLength = evaluation.DefaultConfig().MinAnswerLength
	cfg.Analytics = analytics.DefaultThresholds()
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LLMConfig converts the llm section, filling keys from the environment.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	out.Model = c.LLM.Model
	out.APIKey = c.LLM.APIKey
	out.BaseURL = c.LLM.BaseURL
	if c.LLM.MaxTokens > 0 {
		out.MaxTokens = c.LLM.MaxTokens
	}
	if c.LLM.Temperature > 0 {
		out.Temperature = c.LLM.Temperature
	}
	if c.LLM.Retry.MaxAttempts > 0 {
		out.Retry.MaxAttempts = c.LLM.Retry.MaxAttempts
	}
	if c.LLM.Retry.Multiplier > 0 {
		out.Retry.Multiplier = c.LLM.Retry.Multiplier
	}
	out.Retry.InitialWait = TTLDuration(c.LLM.Retry.InitialWait, out.Retry.InitialWait)
	out.Retry.MaxWait = TTLDuration(c.LLM.Retry.MaxWait, out.Retry.MaxWait)
	out.ApplyEnv()
	return out
}

// EvaluationConfig converts the evaluation section.
func (c Config) EvaluationConfig() evaluation.Config {
	out := evaluation.DefaultConfig()
	out.Timeout = TTLDuration(c.Evaluation.Timeout, out.Timeout)
	if c.Evaluation.MinAnswerLength > 0 {
		out.MinAnswerLength = c.Evaluation.MinAnswerLength
	}
	if c.LLM.MaxTokens > 0 {
		out.MaxTokens = c.LLM.MaxTokens
	}
	if c.LLM.Temperature > 0 {
		out.Temperature = c.LLM.Temperature
	}
	return out
}
