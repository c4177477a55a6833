// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpecExtension is the extension of spec files referenced by name.
const SpecExtension = "sps"

// LoadError reports a spec file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFunc loads one spec file.
type LoadFunc func(path string) (*Package, error)

// Load reads a spec file. Files ending in .yaml or .yml are decoded as YAML,
// everything else (.sps, .toml) as TOML.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path) //nolint:gosec // spec paths come from the build configuration
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	pkg, err := Decode(data, formatOf(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return pkg, nil
}

// Encoding selects the on-disk syntax of a spec.
type Encoding int

const (
	EncodingTOML Encoding = iota
	EncodingYAML
)

func formatOf(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return EncodingTOML
	}
}

// Decode parses a spec document.
func Decode(data []byte, enc Encoding) (*Package, error) {
	var root *yaml.Node
	switch enc {
	case EncodingYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return nil, errors.New("empty document")
		}
		root = doc.Content[0]
	default:
		n, err := tomlToNode(data)
		if err != nil {
			return nil, err
		}
		root = n
	}

	var pkg Package
	if err := root.Decode(&pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}
