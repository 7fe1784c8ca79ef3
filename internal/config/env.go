package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MBEBENCH_WORKERS.
const EnvPrefix = "MBEBENCH"

var envKeys = []string{"questions_file", "output_dir", "workers", "timeout", "duckdb", "metrics_file"}

// ApplyEnv overlays MBEBENCH_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if v.IsSet("questions_file") {
		cfg.QuestionsFile = strings.TrimSpace(v.GetString("questions_file"))
	}
	if v.IsSet("output_dir") {
		cfg.OutputDir = strings.TrimSpace(v.GetString("output_dir"))
	}
	if v.IsSet("workers") {
		raw := strings.TrimSpace(v.GetString("workers"))
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s_WORKERS: invalid integer %q", EnvPrefix, raw)
		}
		cfg.Workers = workers
	}
	if v.IsSet("timeout") {
		cfg.Timeout = strings.TrimSpace(v.GetString("timeout"))
	}
	if v.IsSet("duckdb") {
		cfg.DuckDB = strings.TrimSpace(v.GetString("duckdb"))
	}
	if v.IsSet("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(v.GetString("metrics_file"))
	}
	return nil
}
