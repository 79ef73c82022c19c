package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads and parses a configuration file from the given path.
// YAML is the default; files ending in .toml are parsed as TOML.
// Environment variables in the format ${VAR_NAME} are expanded before
// parsing, so api keys can stay out of the file.
func Load(path string) (cfg *Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			cfg, err = nil, fmt.Errorf("failed to close config file: %w", cerr)
		}
	}()

	cfg, err = LoadFromReader(file, formatForPath(path))

	return cfg, err
}

// Config file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// formatForPath picks the config format from the file extension.
func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// LoadFromReader reads and parses configuration from an io.Reader in the
// given format. Environment variables are expanded before parsing.
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(content))

	var cfg Config

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	return &cfg, nil
}
