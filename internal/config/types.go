package config

// Config is the mbebench.yml schema.
type Config struct {
	Version       int              `yaml:"version"`
	QuestionsFile string           `yaml:"questions_file"`
	OutputDir     string           `yaml:"output_dir"`
	Workers       int              `yaml:"workers"`
	Timeout       string           `yaml:"timeout"`
	DuckDB        string           `yaml:"duckdb"`
	MetricsFile   string           `yaml:"metrics_file"`
	Providers     []ProviderConfig `yaml:"providers"`
}

// ProviderConfig declares one adapter.
type ProviderConfig struct {
	ID         string `yaml:"id"`
	Type       string `yaml:"type"`
	Model      string `yaml:"model"`
	Mode       string `yaml:"mode"`
	APIKeyEnv  string `yaml:"api_key_env"`
	BaseURL    string `yaml:"base_url"`
	MaxTokens  int    `yaml:"max_tokens"`
	StubAnswer string `yaml:"stub_answer"`
	Disabled   bool   `yaml:"disabled"`
}
