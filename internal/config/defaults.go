package config

import (
	"time"

	"mbebench/internal/provider"
)

// Defaults applied when mbebench.yml omits a value.
const (
	DefaultVersion   = 1
	DefaultOutputDir = "mbebench-results"
	DefaultWorkers   = 1
	DefaultTimeout   = 60 * time.Second
)

var defaultKeyEnv = map[string]string{
	provider.TypeOpenAI:     "OPENAI_API_KEY",
	provider.TypeAnthropic:  "ANTHROPIC_API_KEY",
	provider.TypeGemini:     "GOOGLE_API_KEY",
	provider.TypeOpenRouter: "OPENROUTER_API_KEY",
}

// Default returns the configuration used when no mbebench.yml exists: the
// three flagship models, each with its native structured-output mode.
func Default() Config {
	cfg := Config{
		Providers: []ProviderConfig{
			{ID: "gemini", Type: provider.TypeGemini, Model: "gemini-3-pro-preview", Mode: string(provider.ModeResponseSchema)},
			{ID: "openai", Type: provider.TypeOpenAI, Model: "gpt-5.2", Mode: string(provider.ModeJSONSchema)},
			{ID: "claude", Type: provider.TypeAnthropic, Model: "claude-opus-4-5-20251101", Mode: string(provider.ModeToolCall)},
		},
	}
	Normalize(&cfg)
	return cfg
}

// DefaultKeyEnv returns the conventional credential variable for a type.
func DefaultKeyEnv(providerType string) string {
	return defaultKeyEnv[providerType]
}
