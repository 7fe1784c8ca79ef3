package config

import (
	"fmt"
	"os"
)

const defaultConfig = `version: 1
# questions_file: questions.yml   # omit to use the built-in sample set
output_dir: mbebench-results
workers: 1
timeout: 60s
# duckdb: mbebench-results/mbebench.duckdb
# metrics_file: mbebench-results/mbebench.prom

providers:
  - id: gemini
    type: gemini
    model: gemini-3-pro-preview
    mode: response_schema
    api_key_env: GOOGLE_API_KEY
  - id: openai
    type: openai
    model: gpt-5.2
    mode: json_schema
    api_key_env: OPENAI_API_KEY
  - id: claude
    type: anthropic
    model: claude-opus-4-5-20251101
    mode: tool_call
    api_key_env: ANTHROPIC_API_KEY
  - id: openrouter
    type: openrouter
    model: openai/gpt-4.1-mini
    mode: json_schema
    api_key_env: OPENROUTER_API_KEY
    disabled: true
`

// Scaffold writes a starter mbebench.yml, refusing to overwrite one.
func Scaffold(path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", path)
		}
		return fmt.Errorf("config file already exists at %q", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
