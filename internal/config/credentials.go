package config

import (
	"fmt"
	"strings"

	"mbebench/internal/provider"
)

// Skipped names a provider left out of a run and why.
type Skipped struct {
	ID     string
	Reason string
}

// ProviderSettings resolves enabled providers into adapter settings. When
// only is non-empty it selects providers by id, in the order given. Providers
// whose credential variable is unset are skipped rather than failing the run.
func (c Config) ProviderSettings(only []string, lookup func(string) (string, bool)) ([]provider.Settings, []Skipped, error) {
	entries, err := c.selectProviders(only)
	if err != nil {
		return nil, nil, err
	}
	settings := make([]provider.Settings, 0, len(entries))
	skipped := []Skipped{}
	for _, entry := range entries {
		key := ""
		if entry.Type != provider.TypeStub {
			value, ok := lookup(entry.APIKeyEnv)
			value = strings.TrimSpace(value)
			if entry.APIKeyEnv == "" || !ok || value == "" {
				skipped = append(skipped, Skipped{ID: entry.ID, Reason: fmt.Sprintf("%s is not set", credentialName(entry))})
				continue
			}
			key = value
		}
		settings = append(settings, provider.Settings{
			ID:         entry.ID,
			Type:       entry.Type,
			Model:      entry.Model,
			Mode:       provider.OutputMode(entry.Mode),
			APIKey:     key,
			BaseURL:    entry.BaseURL,
			MaxTokens:  entry.MaxTokens,
			StubAnswer: entry.StubAnswer,
		})
	}
	return settings, skipped, nil
}

func (c Config) selectProviders(only []string) ([]ProviderConfig, error) {
	if len(only) == 0 {
		out := make([]ProviderConfig, 0, len(c.Providers))
		for _, entry := range c.Providers {
			if !entry.Disabled {
				out = append(out, entry)
			}
		}
		return out, nil
	}
	byID := make(map[string]ProviderConfig, len(c.Providers))
	for _, entry := range c.Providers {
		byID[entry.ID] = entry
	}
	out := make([]ProviderConfig, 0, len(only))
	seen := map[string]struct{}{}
	for _, id := range only {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entry, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", id)
		}
		out = append(out, entry)
	}
	return out, nil
}

func credentialName(entry ProviderConfig) string {
	if entry.APIKeyEnv == "" {
		return "api_key_env"
	}
	return entry.APIKeyEnv
}
