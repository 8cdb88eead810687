// Package config loads application configuration from YAML or JSON
// files, with environment variable overrides for credentials.
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

// Config is the application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`
	// DataDir is the root directory for generated artifacts.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// HistoryDB is the SQLite path for run history.
	// Empty keeps history in memory only.
	HistoryDB string `yaml:"history_db" json:"history_db"`

	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`
	Log    LogConfig    `yaml:"log" json:"log"`

	// Metrics enables OpenTelemetry metrics recording.
	Metrics bool `yaml:"metrics" json:"metrics"`
	// Tracing enables OpenTelemetry span creation.
	Tracing bool `yaml:"tracing" json:"tracing"`
}

// OpenAIConfig configures the capability client.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API.
	// Overridable via OPENAI_API_KEY.
	APIKey string `yaml:"api_key" json:"api_key"`
	// BaseURL points at an OpenAI-compatible endpoint.
	// Overridable via OPENAI_BASE_URL.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Model is the chat model. Overridable via OPENAI_MODEL.
	Model string `yaml:"model" json:"model"`
	// ImageModel is the image generation model.
	ImageModel string `yaml:"image_model" json:"image_model"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Listen:  ":8080",
		DataDir: "./data",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// FromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json. Environment
// overrides are applied after parsing.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config and applies environment
// overrides.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromJSON parses JSON data into a Config and applies environment
// overrides.
func FromJSON(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the default configuration with environment overrides,
// for running without a config file.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// applyEnv lets the environment win over file values for credentials
// and endpoints.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
}

// Validate checks the configuration is runnable.
func (c Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("openai api key missing: set openai.api_key or OPENAI_API_KEY")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	return nil
}
