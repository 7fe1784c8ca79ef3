package config

import (
	"strings"

	"mbebench/internal/provider"
)

// Normalize trims values and fills defaults in place.
func Normalize(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}
	cfg.QuestionsFile = strings.TrimSpace(cfg.QuestionsFile)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	cfg.Timeout = strings.TrimSpace(cfg.Timeout)
	if cfg.Timeout == "" {
		cfg.Timeout = DefaultTimeout.String()
	}
	for i := range cfg.Providers {
		entry := &cfg.Providers[i]
		entry.ID = strings.TrimSpace(entry.ID)
		entry.Type = strings.ToLower(strings.TrimSpace(entry.Type))
		entry.Model = strings.TrimSpace(entry.Model)
		entry.Mode = strings.ToLower(strings.TrimSpace(entry.Mode))
		if entry.Mode == "" {
			if modes := provider.SupportedModes(entry.Type); len(modes) > 0 {
				entry.Mode = string(modes[0])
			}
		}
		if strings.TrimSpace(entry.APIKeyEnv) == "" {
			entry.APIKeyEnv = DefaultKeyEnv(entry.Type)
		}
	}
}
