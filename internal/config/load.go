package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loaded is a validated config plus where it came from.
type Loaded struct {
	Config Config
	// Path is empty when built-in defaults were used.
	Path string
}

// Load reads, parses, normalizes, and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	return finish(cfg, path)
}

// Parse decodes config YAML strictly.
func Parse(data []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Discover loads an explicit config path, or searches upward from startDir,
// falling back to Default when nothing is found. Environment overrides are
// applied in every case.
func Discover(explicitPath, startDir string) (Loaded, error) {
	path := explicitPath
	if path == "" {
		found, err := FindConfigPath(startDir)
		switch {
		case err == nil:
			path = found
		case errors.Is(err, ErrConfigNotFound):
			cfg, err := finish(Default(), "")
			if err != nil {
				return Loaded{}, err
			}
			return Loaded{Config: cfg}, nil
		default:
			return Loaded{}, err
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Config: cfg, Path: path}, nil
}

func finish(cfg Config, path string) (Config, error) {
	Normalize(&cfg)
	if path != "" {
		cfg.QuestionsFile = ResolvePath(path, cfg.QuestionsFile)
		cfg.OutputDir = ResolvePath(path, cfg.OutputDir)
		cfg.DuckDB = ResolvePath(path, cfg.DuckDB)
		cfg.MetricsFile = ResolvePath(path, cfg.MetricsFile)
	}
	// Environment values are taken relative to the working directory.
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(&cfg); err != nil {
		var validation *ValidationError
		if errors.As(err, &validation) {
			validation.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads dir/.env without overriding variables already set.
// A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
