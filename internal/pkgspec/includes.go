// SPDX-License-Identifier: AGPL-3.0-or-later
package pkgspec

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Registry holds the packages loaded during one build. A package referenced
// by name is read from <dir>/<name>.<ext> at most once.
type Registry struct {
	dir  string
	ext  string
	load LoadFunc

	byName map[string]*Package
	byPath map[string]*Package
	origin map[string]string
}

// NewRegistry creates a registry resolving names against dir. An empty ext
// means SpecExtension and a nil load means Load.
func NewRegistry(dir, ext string, load LoadFunc) *Registry {
	if ext == "" {
		ext = SpecExtension
	}
	if load == nil {
		load = Load
	}
	return &Registry{
		dir:    dir,
		ext:    ext,
		load:   load,
		byName: make(map[string]*Package),
		byPath: make(map[string]*Package),
		origin: make(map[string]string),
	}
}

// Path returns the file a package name resolves to.
func (r *Registry) Path(name string) string {
	return filepath.Join(r.dir, name+"."+r.ext)
}

// LoadFile loads the spec at path and registers it under its name. Loading
// the same file again returns the cached package; two files declaring the
// same name are an error.
func (r *Registry) LoadFile(path string) (*Package, error) {
	key := canonicalPath(path)
	if pkg, ok := r.byPath[key]; ok {
		return pkg, nil
	}

	pkg, err := r.load(path)
	if err != nil {
		return nil, err
	}
	if prev, ok := r.origin[pkg.Name]; ok {
		return nil, fmt.Errorf("package %s is declared by both %s and %s", pkg.Name, prev, path)
	}

	r.byPath[key] = pkg
	r.byName[pkg.Name] = pkg
	r.origin[pkg.Name] = path
	return pkg, nil
}

// Package returns the package called name, loading it on first use.
func (r *Registry) Package(name string) (*Package, error) {
	if pkg, ok := r.byName[name]; ok {
		return pkg, nil
	}
	path := r.Path(name)
	pkg, err := r.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if pkg.Name != name {
		return nil, fmt.Errorf("%s declares package %s, expected %s", path, pkg.Name, name)
	}
	return pkg, nil
}

// Source returns the file the package called name was loaded from.
func (r *Registry) Source(name string) (string, bool) {
	path, ok := r.origin[name]
	return path, ok
}

// Names returns the names of every loaded package, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Includes loads every package pkg refers to: owners of its external
// variables and, for extensions, the extended package. References of the
// included packages themselves are not followed.
func (r *Registry) Includes(pkg *Package) (Includes, error) {
	out := make(Includes)
	for _, name := range referencedPackages(pkg) {
		dep, err := r.Package(name)
		if err != nil {
			return nil, fmt.Errorf("package %s: include %s: %w", pkg.Name, name, err)
		}
		out[name] = dep
	}
	return out, nil
}

// LoadIncludes resolves the includes of pkg against dir using .sps files.
func LoadIncludes(pkg *Package, dir string) (Includes, error) {
	return NewRegistry(dir, SpecExtension, Load).Includes(pkg)
}

// referencedPackages lists external-variable owners in config order,
// followed by the extended package, without duplicates.
func referencedPackages(pkg *Package) []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, conf := range pkg.Configs().All() {
		dyn, ok := conf.Type.(*DynamicConf)
		if !ok {
			continue
		}
		for owner := range dyn.EVars.All() {
			add(owner)
		}
	}
	if ext, ok := pkg.Spec.(*ExtensionSpec); ok {
		add(ext.Extends)
	}
	return names
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
