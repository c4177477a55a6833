// SPDX-License-Identifier: AGPL-3.0-or-later

// Package specdir enumerates the spec files of a spec directory.
package specdir

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
)

// Scanner lists the files below a spec directory.
type Scanner struct {
	root string
	ext  string

	mu        sync.Mutex
	fileCache []string
}

// New creates a Scanner for root accepting files with extension ext
// ("sps" or ".sps").
func New(root, ext string) *Scanner {
	return &Scanner{
		root: root,
		ext:  Extension(ext),
	}
}

// Root returns the spec directory.
func (s *Scanner) Root() string { return s.root }

// Files returns every regular file below the root as a slash-separated
// relative path. The walk happens once per Scanner.
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileCache != nil {
		return s.fileCache, nil
	}

	files := []string{}
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning spec directory %s: %w", s.root, err)
	}

	s.fileCache = files
	return s.fileCache, nil
}

// FilesFiltered returns the files matching opts.
func (s *Scanner) FilesFiltered(ctx context.Context, opts FilterOptions) ([]string, error) {
	all, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}
	return FilterFiles(all, opts), nil
}

// SpecFiles returns the spec files below the root, applying default excludes.
func (s *Scanner) SpecFiles(ctx context.Context) ([]string, error) {
	opts := FilterOptions{ExcludeDirs: DefaultExcludeDirs()}
	if s.ext != "" {
		opts.IncludeExtensions = []string{s.ext}
	}
	return s.FilesFiltered(ctx, opts)
}

// SpecPaths is SpecFiles joined onto the root.
func (s *Scanner) SpecPaths(ctx context.Context) ([]string, error) {
	rel, err := s.SpecFiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rel))
	for i, p := range rel {
		out[i] = filepath.Join(s.root, filepath.FromSlash(p))
	}
	return out, nil
}
