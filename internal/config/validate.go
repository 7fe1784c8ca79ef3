package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"mbebench/internal/provider"
	"mbebench/internal/question"
)

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version != DefaultVersion {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if cfg.OutputDir == "" {
		collector.add("output_dir", "is required")
	}
	if cfg.Workers < 1 {
		collector.add("workers", "must be >= 1")
	}
	if _, err := parseTimeout(cfg.Timeout); err != nil {
		collector.add("timeout", err.Error())
	}

	validateProviders(cfg.Providers, collector.add)
	return collector.result()
}

func validateProviders(providers []ProviderConfig, add issueAdder) {
	enabled := 0
	seen := map[string]struct{}{}
	for i, entry := range providers {
		prefix := fmt.Sprintf("providers[%d]", i)
		if !entry.Disabled {
			enabled++
		}
		if entry.ID == "" {
			add(prefix+".id", "is required")
		} else if _, exists := seen[entry.ID]; exists {
			add(prefix+".id", fmt.Sprintf("duplicate id %q", entry.ID))
		} else {
			seen[entry.ID] = struct{}{}
		}

		switch {
		case entry.Type == "":
			add(prefix+".type", "is required")
		case !provider.KnownType(entry.Type):
			add(prefix+".type", fmt.Sprintf("unsupported type %q", entry.Type))
		case !provider.SupportsMode(entry.Type, provider.OutputMode(entry.Mode)):
			add(prefix+".mode", fmt.Sprintf("%s does not support mode %q (supported: %s)", entry.Type, entry.Mode, joinModes(provider.SupportedModes(entry.Type))))
		}

		if entry.Type != provider.TypeStub && entry.Model == "" {
			add(prefix+".model", "is required")
		}
		if entry.MaxTokens < 0 {
			add(prefix+".max_tokens", "must be >= 0")
		}
		if entry.StubAnswer != "" {
			if _, ok := question.ParseLetter(entry.StubAnswer); !ok {
				add(prefix+".stub_answer", fmt.Sprintf("must be one of A-D, got %q", entry.StubAnswer))
			}
		}
		if entry.BaseURL != "" {
			if parsed, err := url.Parse(entry.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
				add(prefix+".base_url", fmt.Sprintf("invalid url %q", entry.BaseURL))
			}
		}
	}
	if enabled == 0 {
		add("providers", "at least one enabled provider is required")
	}
}

// CallTimeout returns the parsed per-call timeout.
func (c Config) CallTimeout() time.Duration {
	timeout, err := parseTimeout(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return timeout
}

func parseTimeout(value string) (time.Duration, error) {
	timeout, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", value)
	}
	return timeout, nil
}

func joinModes(modes []provider.OutputMode) string {
	parts := make([]string, 0, len(modes))
	for _, mode := range modes {
		parts = append(parts, string(mode))
	}
	return strings.Join(parts, ", ")
}
