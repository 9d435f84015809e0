package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level bancos-reader.yaml configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Batch    BatchConfig    `yaml:"batch"`
	Store    StoreConfig    `yaml:"store"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Output   OutputConfig   `yaml:"output"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BatchConfig controls concurrent document processing.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// StoreConfig controls the local debug/backup dump of extracted movements.
// An empty path disables the dump.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DefaultsConfig supplies values the detector cannot derive from a filename.
type DefaultsConfig struct {
	Currency      string `yaml:"currency"`
	ReferenceYear string `yaml:"reference_year"`
}

// OutputConfig controls CSV export.
type OutputConfig struct {
	IncludeHeader bool `yaml:"include_header"`
}

// Load reads a bancos-reader.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Batch:    BatchConfig{Workers: 4},
		Defaults: DefaultsConfig{Currency: "MXN", ReferenceYear: "2025"},
		Output:   OutputConfig{IncludeHeader: true},
	}
}
