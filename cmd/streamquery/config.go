package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

const (
	configDirName = "streamquery"
	defaultConfig = ".config"
)

var configFiles = []string{
	"config.yaml",
	"config.yml",
}

// Config holds the settings read from the config file. Command line flags
// take precedence over every field.
type Config struct {
	ChunkSize int    `yaml:"chunk_size" default:"4096"`
	Format    string `yaml:"format" default:"text"`
	Width     int    `yaml:"width" default:"80"`
	Render    bool   `yaml:"render"`
	LogLevel  string `yaml:"log_level" default:"warn"`
}

func newDefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	return cfg, nil
}

// configDir returns the directory searched for config files, based on
// XDG_CONFIG_HOME with a fallback to ~/.config.
func configDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		configHome = filepath.Join(home, defaultConfig)
	}
	return filepath.Join(configHome, configDirName), nil
}

// LoadConfig reads the config file at path. An empty path searches the
// config directory and falls back to defaults when no file exists there; an
// explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFile(path)
	}

	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	for _, name := range configFiles {
		cfg, err := loadConfigFile(filepath.Join(dir, name))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return newDefaultConfig()
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := newDefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	return validateFormat(c.Format)
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, formatJSON)
	}
}
