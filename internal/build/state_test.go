// SPDX-License-Identifier: AGPL-3.0-or-later
package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestStore_RoundTrip(t *testing.T) {
	store := NewManifestStore(filepath.Join(t.TempDir(), ".debcrafter"))

	last, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, last, "missing manifest is clean state")

	m := &Manifest{
		Status: StatusPass,
		Packages: []PackageRecord{{
			Name:      "worker",
			Source:    "worker.sps",
			Instances: []InstanceRecord{{Name: "worker-fast", Variant: "fast", Shape: "service", Files: []string{"worker-fast.templates"}}},
		}},
		Files: []string{"worker-fast.templates"},
	}
	require.NoError(t, store.Write(m))

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, m, got)

	require.NoError(t, store.Reset())
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestManifestStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewManifestStore(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{"), 0o644))

	_, err := store.Read()
	assert.ErrorContains(t, err, "decoding build manifest")
}
