package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imkarma/isc/internal/criteria"
)

// FileName is the config file kept next to the table documents.
const FileName = "isc.yaml"

// Output formats accepted by show.
const (
	OutputText     = "text"
	OutputMarkdown = "markdown"
	OutputRaw      = "raw"
)

// Config is the workspace configuration for the criteria tool.
type Config struct {
	Version       int    `yaml:"version"`
	DefaultEffort string `yaml:"default_effort,omitempty"` // Effort used when create gets none
	DefaultSource string `yaml:"default_source,omitempty"` // Source used when add gets none
	Catalog       *bool  `yaml:"catalog,omitempty"`        // Record archives in archives.db (default true)
	Output        string `yaml:"output,omitempty"`         // Default show format
}

// CatalogEnabled reports whether archives should be recorded in the catalog.
func (c *Config) CatalogEnabled() bool {
	return c.Catalog == nil || *c.Catalog
}

// Effort returns the configured default effort.
func (c *Config) Effort() string {
	if c.DefaultEffort != "" {
		return c.DefaultEffort
	}
	return criteria.DefaultEffort
}

// Source returns the configured default source.
func (c *Config) Source() criteria.Source {
	if c.DefaultSource != "" {
		return criteria.Source(strings.ToUpper(c.DefaultSource))
	}
	return criteria.SourceExplicit
}

// OutputFormat returns the configured default show format.
func (c *Config) OutputFormat() string {
	if c.Output != "" {
		return c.Output
	}
	return OutputText
}

// Path returns the config path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config.
func DefaultConfig() *Config {
	catalog := true
	return &Config{
		Version:       1,
		DefaultEffort: criteria.DefaultEffort,
		DefaultSource: string(criteria.SourceExplicit),
		Catalog:       &catalog,
		Output:        OutputText,
	}
}

func (c *Config) validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("config: unsupported version %d", c.Version)
	}
	if c.DefaultSource != "" {
		if _, err := criteria.ParseSource(c.DefaultSource); err != nil {
			return fmt.Errorf("config: default_source: %w", err)
		}
	}
	switch c.Output {
	case "", OutputText, OutputMarkdown, OutputRaw:
	default:
		return fmt.Errorf("config: output must be text, markdown, or raw, got %q", c.Output)
	}
	return nil
}
