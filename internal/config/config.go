package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            int
	LogLevel        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	DatabaseURL     string
	NatsURL         string
	RulesPath       string
	RulesRefreshSec int
}

func Load() Config {
	return Config{
		Port:            envInt("CHATAI_PORT", 8790),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o-mini"),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		NatsURL:         envStr("NATS_URL", ""),
		RulesPath:       envStr("RULES_PATH", ""),
		RulesRefreshSec: envInt("RULES_REFRESH_SEC", 300),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
