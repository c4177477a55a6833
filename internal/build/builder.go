// SPDX-License-Identifier: AGPL-3.0-or-later

// Package build drives spec files through loading, include resolution,
// instantiation and artifact generation.
package build

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/zeebo/blake3"

	"github.com/bartekus/debcrafter/internal/codegen"
	"github.com/bartekus/debcrafter/internal/generator"
	"github.com/bartekus/debcrafter/internal/pkgspec"
)

// OutputError reports a failure writing a generated file.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// Options configure a Builder.
type Options struct {
	// OutDir receives generated files.
	OutDir string

	// DryRun resolves and checks every instance without generating files.
	DryRun bool

	// Generators run for every instance. Nil means generator.Registry.
	Generators []generator.Generator

	// Logger receives progress. Nil discards debug output.
	Logger *log.Logger
}

// Builder runs builds against one package registry.
type Builder struct {
	registry   *pkgspec.Registry
	generators []generator.Generator
	outDir     string
	dryRun     bool
	log        *log.Logger
}

// NewBuilder creates a builder that loads packages through registry.
func NewBuilder(registry *pkgspec.Registry, opts Options) *Builder {
	gens := opts.Generators
	if gens == nil {
		gens = generator.Registry
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		registry:   registry,
		generators: gens,
		outDir:     opts.OutDir,
		dryRun:     opts.DryRun,
		log:        logger,
	}
}

// Build processes files in order and stops at the first error. The returned
// manifest is never nil; on failure it records what was built so far and
// names the file that failed.
func (b *Builder) Build(ctx context.Context, files []string) (*Manifest, error) {
	m := &Manifest{Status: StatusPass, Files: []string{}, Digests: map[string]string{}}

	roots := make(map[string]struct{})
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return b.fail(m, file, err)
		}

		pkg, err := b.registry.LoadFile(file)
		if err != nil {
			return b.fail(m, file, err)
		}
		if _, ok := roots[pkg.Name]; ok {
			b.log.Debug("skipping repeated package", "name", pkg.Name, "path", file)
			continue
		}
		roots[pkg.Name] = struct{}{}

		rec, err := b.buildPackage(pkg, file, m.Digests)
		if err != nil {
			return b.fail(m, file, err)
		}
		m.Packages = append(m.Packages, *rec)
		for _, inst := range rec.Instances {
			m.Files = append(m.Files, inst.Files...)
		}
	}

	for _, name := range b.registry.Names() {
		if _, ok := roots[name]; ok {
			continue
		}
		src, _ := b.registry.Source(name)
		m.Included = append(m.Included, IncludedRecord{Name: name, Source: src})
	}
	sort.Strings(m.Files)

	b.log.Debug("build finished", "packages", len(m.Packages), "instances", len(m.Instances()), "files", len(m.Files))
	return m, nil
}

func (b *Builder) fail(m *Manifest, file string, err error) (*Manifest, error) {
	m.Status = StatusFail
	m.Failed = file
	m.Error = err.Error()
	return m, err
}

func (b *Builder) buildPackage(pkg *pkgspec.Package, file string, digests map[string]string) (*PackageRecord, error) {
	logger := b.log.WithPrefix(pkg.Name)
	logger.Debug("loaded package", "path", file)

	includes, err := b.registry.Includes(pkg)
	if err != nil {
		return nil, err
	}
	for name := range includes {
		src, _ := b.registry.Source(name)
		logger.Debug("included package", "include", name, "path", src)
	}

	rec := &PackageRecord{Name: pkg.Name, Source: file}
	for _, inst := range pkgspec.Instances(pkg, includes) {
		if err := pkgspec.CheckReferences(inst); err != nil {
			return nil, err
		}

		ir := InstanceRecord{Name: inst.Name, Variant: inst.Variant, Shape: inst.Shape()}
		if !b.dryRun {
			for _, gen := range b.generators {
				name, err := b.generate(gen, inst)
				if err != nil {
					return nil, err
				}
				if name == "" {
					continue
				}
				digest, err := fileDigest(filepath.Join(b.outDir, name))
				if err != nil {
					return nil, &OutputError{Path: filepath.Join(b.outDir, name), Err: err}
				}
				ir.Files = append(ir.Files, name)
				digests[name] = digest
			}
		}
		rec.Instances = append(rec.Instances, ir)
	}
	return rec, nil
}

// generate runs gen for inst and returns the file it wrote, or "" when the
// generator produced nothing.
func (b *Builder) generate(gen generator.Generator, inst *pkgspec.Instance) (string, error) {
	name := gen.FileName(inst)
	path := filepath.Join(b.outDir, name)

	out := codegen.NewLazyCreateBuilder(path)
	defer out.Abandon()

	if err := gen.Generate(inst, out); err != nil {
		var outErr *OutputError
		if errors.As(err, &outErr) {
			return "", err
		}
		return "", &OutputError{Path: path, Err: fmt.Errorf("%s: %w", gen.ID(), err)}
	}
	if !out.Finalized() {
		return "", nil
	}
	if err := out.Close(); err != nil {
		return "", &OutputError{Path: path, Err: err}
	}

	b.log.Debug("generated file", "instance", inst.Name, "generator", gen.ID(), "path", path)
	return name, nil
}

// fileDigest returns the hex BLAKE3-256 digest of the file at path.
func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
