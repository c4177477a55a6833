// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/debcrafter/cmd/debcrafter/internal/clierr"
	"github.com/bartekus/debcrafter/internal/build"
)

const sharedSpec = `name = "shared"
bin_package = "shared-bin"
binary = "/usr/bin/shared"
user = {}

[config."shared.conf"]
format = "plain"

[config."shared.conf".ivars.db_host]
type = "bind_host"
summary = "Database host"
default = "localhost"
priority = "high"
`

const appSpec = `name = "app"
variants = ["blue", "green"]
bin_package = "app-bin"
binary = "/usr/bin/app"
user = { group = true }

[config."app.conf"]
format = "plain"

[config."app.conf".ivars.enabled]
type = "bool"
summary = "Enable feature"
default = "true"
priority = "low"

[config."app.conf".evars.shared.db_host]
`

// specDir writes the given spec files into a fresh directory.
func specDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIContract(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	requiredCommands := []string{
		"check",
		"completion",
		"generate",
		"help",
		"list",
		"version",
	}
	for _, c := range requiredCommands {
		assert.Contains(t, out, c, "expected top-level command %q in root help", c)
	}

	for _, flag := range []string{"--config", "--spec-dir", "--out-dir", "--include-ext", "--verbose"} {
		assert.Contains(t, out, flag)
	}
}

func TestVersion(t *testing.T) {
	t.Setenv("DEBCRAFTER_VERSION", "1.2.3")
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "Debcrafter version 1.2.3\n", out)
}

func TestGenerate(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec, "app.sps": appSpec})
	outDir := filepath.Join(t.TempDir(), "debian")

	out, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app-blue.templates",
		"app-green.templates",
		"shared.templates",
	}, strings.Fields(out))

	got, err := os.ReadFile(filepath.Join(outDir, "app-green.templates"))
	require.NoError(t, err)
	assert.Equal(t, "\nTemplate: app-green/enabled\nType: bool\nDefault: true\nDescription: Enable feature\n", string(got))

	m, err := build.NewManifestStore(filepath.Join(outDir, ".debcrafter")).Read()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, build.StatusPass, m.Status)
	assert.Len(t, m.Packages, 2)
}

func TestGenerate_NamedFiles(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec, "app.sps": appSpec})
	outDir := filepath.Join(t.TempDir(), "debian")

	out, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir, "--no-manifest", filepath.Join(dir, "app.sps"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app-blue.templates", "app-green.templates"}, strings.Fields(out))

	_, err = os.Stat(filepath.Join(outDir, "shared.templates"))
	assert.True(t, os.IsNotExist(err), "includes are not built")
	_, err = os.Stat(filepath.Join(outDir, ".debcrafter"))
	assert.True(t, os.IsNotExist(err))
}

func TestList(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec, "app.sps": appSpec})

	out, err := execute(t, "list", "--spec-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "app-blue\tservice\napp-green\tservice\nshared\tservice\n", out)

	out, err = execute(t, "list", "--spec-dir", dir, "--json")
	require.NoError(t, err)
	var records []build.InstanceRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "blue", records[0].Variant)
}

func TestCheck(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec, "app.sps": appSpec})
	outDir := filepath.Join(t.TempDir(), "debian")

	out, err := execute(t, "check", "--spec-dir", dir, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 packages, 3 instances\n", out)

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "check writes nothing")
}

func TestGenerate_RepeatedFile(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec})
	outDir := filepath.Join(t.TempDir(), "debian")
	spec := filepath.Join(dir, "shared.sps")

	out, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir, spec, spec)
	require.NoError(t, err)
	assert.Equal(t, "shared.templates\n", out)

	m, err := build.NewManifestStore(filepath.Join(outDir, ".debcrafter")).Read()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Len(t, m.Packages, 1)
	assert.Equal(t, []string{"shared.templates"}, m.Files)
}

func TestGenerate_SelectGenerator(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec})
	outDir := filepath.Join(t.TempDir(), "debian")

	out, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir, "--generator", "templates")
	require.NoError(t, err)
	assert.Equal(t, "shared.templates\n", out)

	_, err = execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir, "--generator", "postinst")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), `unknown generator "postinst"`)
}

func TestGenerate_Clean(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec, "app.sps": appSpec})
	outDir := filepath.Join(t.TempDir(), "debian")

	_, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir)
	require.NoError(t, err)
	keep := filepath.Join(outDir, "changelog")
	require.NoError(t, os.WriteFile(keep, []byte("not generated"), 0o644))

	// Drop the variants so the app files become stale.
	require.NoError(t, os.Remove(filepath.Join(dir, "app.sps")))
	out, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", outDir, "--clean")
	require.NoError(t, err)
	assert.Equal(t, "shared.templates\n", out)

	for _, name := range []string{"app-blue.templates", "app-green.templates"} {
		_, err = os.Stat(filepath.Join(outDir, name))
		assert.True(t, os.IsNotExist(err), "%s should be removed", name)
	}
	_, err = os.Stat(keep)
	assert.NoError(t, err, "files outside the manifest are kept")

	m, err := build.NewManifestStore(filepath.Join(outDir, ".debcrafter")).Read()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, []string{"shared.templates"}, m.Files)
}

func TestNoSpecFiles_NamesDirectory(t *testing.T) {
	dir := specDir(t, map[string]string{"README.md": "hi"})

	_, err := execute(t, "list", "--spec-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .sps files in "+dir)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
		want  int
	}{
		{
			name:  "decode failure",
			files: map[string]string{"bad.sps": "name = \"bad\"\n"},
			want:  clierr.ExitSpecLoad,
		},
		{
			name:  "missing include",
			files: map[string]string{"app.sps": appSpec},
			want:  clierr.ExitSpecLoad,
		},
		{
			name: "undeclared variable",
			files: map[string]string{
				"app.sps":    appSpec,
				"shared.sps": "name = \"shared\"\nbin_package = \"s\"\nbinary = \"/s\"\nuser = {}\n",
			},
			want: clierr.ExitValidation,
		},
		{
			name:  "no spec files",
			files: map[string]string{"README.md": "hi"},
			want:  clierr.ExitUsage,
		},
		{
			name:  "unknown flag",
			files: map[string]string{"app.sps": appSpec},
			args:  []string{"--frobnicate"},
			want:  clierr.ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := specDir(t, tt.files)
			args := append([]string{"check", "--spec-dir", dir}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, clierr.ExitCodeOf(err), "error: %v", err)
		})
	}
}

func TestGenerate_OutputFailure(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec})
	blocker := filepath.Join(t.TempDir(), "debian")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	_, err := execute(t, "generate", "--spec-dir", dir, "--out-dir", blocker, "--no-manifest")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitOutput, clierr.ExitCodeOf(err))
}

func TestConfigFile(t *testing.T) {
	dir := specDir(t, map[string]string{"shared.sps": sharedSpec})
	cfg := filepath.Join(t.TempDir(), "debcrafter.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("spec_dir: "+dir+"\n"), 0o644))

	out, err := execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "shared\tservice\n", out)

	_, err = execute(t, "list", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
}
