// SPDX-License-Identifier: AGPL-3.0-or-later
package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestStore reads and writes build manifests.
type ManifestStore struct {
	baseDir string
}

// NewManifestStore creates a store at the given base directory (e.g. debian/.debcrafter).
func NewManifestStore(baseDir string) *ManifestStore {
	return &ManifestStore{baseDir: baseDir}
}

// Path returns the manifest file location.
func (s *ManifestStore) Path() string {
	return filepath.Join(s.baseDir, "last-build.json")
}

// Read loads the last manifest. A missing manifest is (nil, nil).
func (s *ManifestStore) Read() (*Manifest, error) {
	f, err := os.Open(s.Path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening build manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding build manifest: %w", err)
	}
	return &m, nil
}

// Write saves m.
func (s *ManifestStore) Write(m *Manifest) (err error) {
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Reset removes the store directory.
func (s *ManifestStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}
