package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingSection is returned when a file lacks the DataBaseConfig object
var ErrMissingSection = errors.New("config file has no DataBaseConfig section")

type fileConfig struct {
	DataBase *Config `json:"DataBaseConfig" yaml:"DataBaseConfig"`
}

// Load reads a JSON or YAML file shaped as {"DataBaseConfig": {...}}.
// ${VAR} references are expanded from the environment before parsing. The
// result is not validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes data of the given format, ".json", ".yaml" or ".yml"
func Parse(format string, data []byte) (Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	var file fileConfig
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		if err := json.Unmarshal(expanded, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(expanded, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}

	if file.DataBase == nil {
		return Config{}, ErrMissingSection
	}
	return *file.DataBase, nil
}
