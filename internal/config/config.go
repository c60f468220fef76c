// Package config loads the bddkit CLI configuration file.
//
// The file is YAML:
//
//	store: ./docs.db        # SQLite doc store
//	journal: ./docs.jsonl   # default journal for "docs import"
//	format: text            # text | json | yaml
//
// Unknown keys are rejected so that typos surface as errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultStore is the doc store path used when none is configured.
const DefaultStore = "bddkit.db"

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml"}

// Config holds CLI settings. Explicit command-line flags take precedence.
type Config struct {
	Store   string `yaml:"store"`
	Journal string `yaml:"journal"`
	Format  string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store:  DefaultStore,
		Format: "text",
	}
}

// Load reads and validates the config file at path. Keys missing from the
// file keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that required fields are present and valid.
func (c Config) Validate() error {
	if c.Store == "" {
		return fmt.Errorf("store is required")
	}
	if !ValidFormat(c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, Formats)
	}
	return nil
}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}
