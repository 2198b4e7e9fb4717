package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Command-line flags take
// precedence over every value set here.
//
//	format: json
//	dialect: ./dialects
//	verify:
//	  parallelism: 8
//	fold:
//	  journal: ./fold.db
type Config struct {
	Format  string       `yaml:"format,omitempty"`
	Dialect string       `yaml:"dialect,omitempty"` // directory of CUE dialect definitions
	Verify  VerifyConfig `yaml:"verify,omitempty"`
	Fold    FoldConfig   `yaml:"fold,omitempty"`
}

// VerifyConfig configures module verification.
type VerifyConfig struct {
	// Parallelism bounds concurrent op verification; 0 means unbounded.
	Parallelism int `yaml:"parallelism,omitempty"`
}

// FoldConfig configures folding.
type FoldConfig struct {
	// Journal is the SQLite file fold runs are recorded in; empty disables
	// journaling.
	Journal string `yaml:"journal,omitempty"`
}

// LoadConfig reads a YAML config file. Unknown fields are rejected so
// typos surface instead of being ignored. An empty file yields a zero
// Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return nil, fmt.Errorf("config %s: invalid format %q: must be one of %v", path, cfg.Format, ValidFormats)
	}
	if cfg.Verify.Parallelism < 0 {
		return nil, fmt.Errorf("config %s: verify.parallelism must be non-negative", path)
	}

	return &cfg, nil
}
