// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config holds the build configuration.
package config

import "path/filepath"

// Defaults.
const (
	DefaultSpecDir    = "."
	DefaultOutDir     = "debian"
	DefaultIncludeExt = "sps"
	DefaultConfigFile = "debcrafter.yaml"
)

// Config is the resolved build configuration.
type Config struct {
	// SpecDir holds the spec files; includes resolve against it.
	SpecDir string `mapstructure:"spec_dir"`

	// OutDir receives generated artifacts.
	OutDir string `mapstructure:"out_dir"`

	// IncludeExt is the extension of included spec files, without the dot.
	IncludeExt string `mapstructure:"include_ext"`

	Verbose bool `mapstructure:"verbose"`
}

// WithDefaults returns a copy with empty fields set to their defaults.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.SpecDir == "" {
		out.SpecDir = DefaultSpecDir
	}
	if out.OutDir == "" {
		out.OutDir = DefaultOutDir
	}
	if out.IncludeExt == "" {
		out.IncludeExt = DefaultIncludeExt
	}
	return &out
}

// ManifestDir is the directory holding build state inside OutDir.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.OutDir, ".debcrafter")
}
