// Copyright 2026 The Treesum Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/treesum-project/treesum/lib/hasher"
)

// EnvVar names the environment variable that points at the defaults
// file when --config is not given.
const EnvVar = "TREESUM_CONFIG"

// Config holds run defaults. Zero values mean "decide at runtime"
// (CPU count for concurrency, full length for digests).
type Config struct {
	// Threads is the default hashing concurrency. 0 = CPU count.
	Threads int `yaml:"threads"`

	// Walkers is the default traversal concurrency for directory
	// inputs. 0 = CPU count.
	Walkers int `yaml:"walkers"`

	// Algorithm is the default digest algorithm name. Empty selects
	// the built-in default.
	Algorithm string `yaml:"algorithm"`

	// DigestLength truncates printed digests when positive.
	DigestLength int `yaml:"digest_length"`

	// Separator is the default output field separator. Accepts the
	// same escape forms as the --separator flag (`\t`, `\0`). Empty
	// defers to the compatible/default separator rules.
	Separator string `yaml:"separator"`

	// Compatible selects digest-first, double-space output.
	Compatible bool `yaml:"compatible"`

	// Quiet suppresses the progress meter and summary.
	Quiet bool `yaml:"quiet"`
}

// Default returns the built-in defaults: everything decided at
// runtime, nothing truncated, ordered output, progress on.
func Default() *Config {
	return &Config{}
}

// Load returns the defaults from the file named by the TREESUM_CONFIG
// environment variable, or Default() when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a defaults file.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	configuration := Default()
	if err := yaml.Unmarshal(raw, configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return configuration, nil
}

// Validate rejects values that could only produce a broken run.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative (got %d)", c.Threads)
	}
	if c.Walkers < 0 {
		return fmt.Errorf("walkers must not be negative (got %d)", c.Walkers)
	}
	if c.DigestLength < 0 {
		return fmt.Errorf("digest_length must not be negative (got %d)", c.DigestLength)
	}
	if _, err := hasher.Lookup(c.Algorithm); err != nil {
		return err
	}
	return nil
}
