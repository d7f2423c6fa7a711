package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that might be set
	for _, key := range []string{
		"CHATAI_PORT", "LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "DATABASE_URL", "NATS_URL", "RULES_PATH",
		"RULES_REFRESH_SEC",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8790 {
		t.Errorf("expected default port 8790, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %s", cfg.OpenAIModel)
	}
	if cfg.OpenAIAPIKey != "" {
		t.Errorf("expected empty default api key, got %s", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIBaseURL != "" {
		t.Errorf("expected empty default base url, got %s", cfg.OpenAIBaseURL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected empty default database url, got %s", cfg.DatabaseURL)
	}
	if cfg.NatsURL != "" {
		t.Errorf("expected empty default nats url, got %s", cfg.NatsURL)
	}
	if cfg.RulesRefreshSec != 300 {
		t.Errorf("expected default rules refresh 300, got %d", cfg.RulesRefreshSec)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CHATAI_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("DATABASE_URL", "postgres://localhost/chatai")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("RULES_PATH", "/etc/chatai/rules.json")
	t.Setenv("RULES_REFRESH_SEC", "60")

	cfg := Load()

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("expected api key sk-test, got %s", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIBaseURL != "http://localhost:8000/v1" {
		t.Errorf("unexpected base url %s", cfg.OpenAIBaseURL)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", cfg.OpenAIModel)
	}
	if cfg.DatabaseURL != "postgres://localhost/chatai" {
		t.Errorf("unexpected database url %s", cfg.DatabaseURL)
	}
	if cfg.NatsURL != "nats://localhost:4222" {
		t.Errorf("unexpected nats url %s", cfg.NatsURL)
	}
	if cfg.RulesPath != "/etc/chatai/rules.json" {
		t.Errorf("unexpected rules path %s", cfg.RulesPath)
	}
	if cfg.RulesRefreshSec != 60 {
		t.Errorf("expected rules refresh 60, got %d", cfg.RulesRefreshSec)
	}
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("CHATAI_PORT", "not-a-number")

	cfg := Load()

	if cfg.Port != 8790 {
		t.Errorf("expected fallback port 8790, got %d", cfg.Port)
	}
}
