// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bartekus/debcrafter/cmd/debcrafter/internal/clierr"
	"github.com/bartekus/debcrafter/internal/build"
	"github.com/bartekus/debcrafter/internal/generator"
	"github.com/bartekus/debcrafter/internal/output"
	"github.com/bartekus/debcrafter/internal/pkgspec"
	"github.com/bartekus/debcrafter/internal/specdir"
)

// specFiles returns args, or every spec file in the spec directory when no
// files were named.
func (o *rootOptions) specFiles(ctx context.Context, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	scanner := specdir.New(o.cfg.SpecDir, o.cfg.IncludeExt)
	files, err := scanner.SpecPaths(ctx)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitSpecLoad, "listing spec files", err)
	}
	if len(files) == 0 {
		return nil, clierr.New(clierr.ExitUsage, fmt.Sprintf("no .%s files in %s", o.cfg.IncludeExt, scanner.Root()))
	}
	return files, nil
}

// runBuild builds files, generating output unless dryRun is set. Nil gens
// runs every registered generator.
func (o *rootOptions) runBuild(ctx context.Context, files []string, dryRun bool, gens []generator.Generator) (*build.Manifest, error) {
	registry := pkgspec.NewRegistry(o.cfg.SpecDir, o.cfg.IncludeExt, nil)
	b := build.NewBuilder(registry, build.Options{
		OutDir:     o.cfg.OutDir,
		DryRun:     dryRun,
		Generators: gens,
		Logger:     output.Logger,
	})
	m, err := b.Build(ctx, files)
	return m, exitError(err)
}

// exitError attaches the exit code matching a build failure.
func exitError(err error) error {
	if err == nil {
		return nil
	}

	var (
		loadErr  *pkgspec.LoadError
		refErr   *pkgspec.UnresolvedReferenceError
		outErr   *build.OutputError
		exitCode clierr.ExitCoder
	)
	switch {
	case errors.As(err, &exitCode):
		return err
	case errors.As(err, &refErr):
		return clierr.Wrap(clierr.ExitValidation, "unresolved reference", err)
	case errors.As(err, &loadErr):
		return clierr.Wrap(clierr.ExitSpecLoad, "spec load failed", err)
	case errors.As(err, &outErr):
		return clierr.Wrap(clierr.ExitOutput, "output failed", err)
	default:
		return clierr.Wrap(clierr.ExitGeneric, "build failed", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
