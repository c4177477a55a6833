// SPDX-License-Identifier: AGPL-3.0-or-later
package specdir

import (
	"path/filepath"
	"sort"
	"strings"
)

// FilterOptions selects spec files from a list of slash-separated paths.
type FilterOptions struct {
	// ExcludeDirs lists directory names to skip.
	// Matching is segment-aware: "target" excludes "target/a.sps" and
	// "pkg/target/b.sps", but not "targets/c.sps".
	ExcludeDirs []string

	// IncludeExtensions lists accepted extensions (e.g. ".sps").
	// If empty, all extensions are included.
	IncludeExtensions []string
}

// DefaultExcludeDirs returns the directories never searched for specs: VCS
// metadata, packaging output and build trees.
func DefaultExcludeDirs() []string {
	return []string{
		".git",
		".hg",
		".debcrafter",
		"debian",
		"node_modules",
		"target",
		"vendor",
		"build",
		"dist",
	}
}

// FilterFiles applies opts to paths and returns the survivors sorted.
func FilterFiles(paths []string, opts FilterOptions) []string {
	if len(paths) == 0 {
		return nil
	}

	var filtered []string
	for _, path := range paths {
		if shouldExclude(path, opts.ExcludeDirs) {
			continue
		}
		if !shouldIncludeExtension(path, opts.IncludeExtensions) {
			continue
		}
		filtered = append(filtered, path)
	}

	sort.Strings(filtered)
	return filtered
}

// shouldExclude reports whether a directory segment of path is excluded.
// The final segment is the file name and never matches.
func shouldExclude(path string, excludes []string) bool {
	if len(excludes) == 0 {
		return false
	}
	parts := strings.Split(path, "/")
	for _, part := range parts[:len(parts)-1] {
		for _, exclude := range excludes {
			if part == exclude {
				return true
			}
		}
	}
	return false
}

func shouldIncludeExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Extension normalizes "sps" and ".sps" to ".sps".
func Extension(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
