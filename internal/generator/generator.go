// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generator renders package instances into packaging artifacts.
package generator

import (
	"github.com/bartekus/debcrafter/internal/codegen"
	"github.com/bartekus/debcrafter/internal/pkgspec"
)

// Generator renders one artifact per instance.
type Generator interface {
	// ID names the generator (e.g. "templates").
	ID() string

	// FileName returns the artifact's file name relative to the output directory.
	FileName(inst *pkgspec.Instance) string

	// Generate writes the artifact. It must call out.Finalize before writing.
	Generate(inst *pkgspec.Instance, out *codegen.LazyCreateBuilder) error
}

// Registry lists the generators run for every instance, in order.
var Registry = []Generator{
	Templates{},
}

// Lookup returns the registered generator with the given ID.
func Lookup(id string) (Generator, bool) {
	for _, g := range Registry {
		if g.ID() == id {
			return g, true
		}
	}
	return nil, false
}
