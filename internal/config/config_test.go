package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != "6379" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.History.Limit != 25 {
		t.Fatalf("HISTORY_LIMIT not applied: %d", cfg.History.Limit)
	}
	if cfg.History.SessionTTL != 120*time.Minute {
		t.Fatalf("unexpected session ttl: %v", cfg.History.SessionTTL)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("provider should be lower-cased, got %q", cfg.LLM.Provider)
	}
}

func TestLoadConfigDisablesLLMWithoutKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLM.Provider != "none" {
		t.Fatalf("expected provider none without api key, got %q", cfg.LLM.Provider)
	}
}
