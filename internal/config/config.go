package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by utl.
const (
	EnvConfig = "UTL_CONFIG"
	EnvOutput = "UTL_OUTPUT"
	EnvSource = "UTL_SOURCE"
	EnvColor  = "UTL_COLOR"
)

// Config represents the CLI configuration
type Config struct {
	// Default output format (text, table, grid, json, ndjson, yaml)
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// Default source file for the table command
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Default column selection, comma separated column keys
	Columns string `json:"columns,omitempty" yaml:"columns,omitempty"`

	// Worksheet name used by export
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// keys lists the settable config keys in display order.
var keys = []string{"output", "color", "source", "columns", "sheet"}

// Keys returns the settable config keys.
func Keys() []string {
	return append([]string(nil), keys...)
}

// configPathFunc is the function used to get the default config path.
// It can be overridden for testing.
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns $UTL_CONFIG or ~/.config/utilisation-cli/config.yaml
func defaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "utilisation-cli", "config.yaml"), nil
}

// DefaultConfigPath returns the config file location.
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (string, error) {
	p, err := c.field(key)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set stores value under key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	p, err := c.field(key)
	if err != nil {
		return err
	}
	*p = strings.TrimSpace(value)
	return nil
}

func (c *Config) field(key string) (*string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "output":
		return &c.Output, nil
	case "color":
		return &c.Color, nil
	case "source":
		return &c.Source, nil
	case "columns":
		return &c.Columns, nil
	case "sheet":
		return &c.Sheet, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (expected %s)", key, strings.Join(keys, "|"))
	}
}

// ResolveSource picks the source path: flag, then $UTL_SOURCE, then the config
// file, then fallback.
func (c *Config) ResolveSource(flag, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if v := getEnv(EnvSource, ""); v != "" {
		return v
	}
	if c != nil && c.Source != "" {
		return c.Source
	}
	return fallback
}

// ResolveOutput returns $UTL_OUTPUT, then the config file value.
// An empty result means no default was configured.
func (c *Config) ResolveOutput() string {
	if v := getEnv(EnvOutput, ""); v != "" {
		return v
	}
	if c != nil {
		return c.Output
	}
	return ""
}

// ResolveColor returns $UTL_COLOR, then the config file value.
func (c *Config) ResolveColor() string {
	if v := getEnv(EnvColor, ""); v != "" {
		return v
	}
	if c != nil {
		return c.Color
	}
	return ""
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
