package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 2m
evaluation:
  timeout: 5s
analytics:
  beginner_max_score: 55
llm:
  provider: mock
  retry:
    max_attempts: 4
    initial_wait: 100ms
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected server/log config %+v %+v", cfg.Server, cfg.Log)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m redis ttl, got %s", got)
	}
	if cfg.Analytics.BeginnerMaxScore != 55 || cfg.Analytics.AdvancedMinScore != 80 {
		t.Fatalf("expected analytics override on top of defaults, got %+v", cfg.Analytics)
	}

	ev := cfg.EvaluationConfig()
	if ev.Timeout != 5*time.Second || ev.MinAnswerLength != 20 {
		t.Fatalf("unexpected evaluation config %+v", ev)
	}
	llmCfg := cfg.LLMConfig()
	if llmCfg.Provider != "mock" || llmCfg.Retry.MaxAttempts != 4 || llmCfg.Retry.InitialWait != 100*time.Millisecond {
		t.Fatalf("unexpected llm config %+v", llmCfg)
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"30s", 30 * time.Second},
		{"soon", time.Minute},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Errorf("TTLDuration(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
