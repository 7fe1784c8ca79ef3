package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the file FindConfigPath looks for.
const ConfigFileName = "mbebench.yml"

// ErrConfigNotFound reports that no config exists in the search path.
var ErrConfigNotFound = errors.New("config not found")

// FindConfigPath searches upward from a directory for mbebench.yml.
func FindConfigPath(startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	dir = abs

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(configPath)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %q is a directory", configPath)
			}
			return configPath, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat config path %q: %w", configPath, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s in %s or parent directories: %w", ConfigFileName, abs, ErrConfigNotFound)
		}
		dir = parent
	}
}

// ResolvePath makes a config-relative path absolute against the config's
// directory. Absolute and empty paths are returned unchanged.
func ResolvePath(configPath, value string) string {
	if value == "" || filepath.IsAbs(value) || configPath == "" {
		return value
	}
	return filepath.Join(filepath.Dir(configPath), value)
}
