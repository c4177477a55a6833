// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bartekus/debcrafter/cmd/debcrafter/internal/clierr"
	"github.com/bartekus/debcrafter/internal/build"
	"github.com/bartekus/debcrafter/internal/generator"
	"github.com/bartekus/debcrafter/internal/output"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		noManifest bool
		clean      bool
		genIDs     []string
	)

	cmd := &cobra.Command{
		Use:   "generate [spec files...]",
		Short: "Generate packaging files for every package and variant",
		Long: `Build the named spec files, or every spec in --spec-dir, into --out-dir.
A summary of the build is kept in <out-dir>/.debcrafter/last-build.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gens, err := lookupGenerators(genIDs)
			if err != nil {
				return err
			}
			files, err := opts.specFiles(cmd.Context(), args)
			if err != nil {
				return err
			}

			store := build.NewManifestStore(opts.cfg.ManifestDir())
			if clean {
				if err := cleanOutputs(store, opts.cfg.OutDir); err != nil {
					return clierr.Wrap(clierr.ExitOutput, "cleaning previous build", err)
				}
			}

			m, buildErr := opts.runBuild(cmd.Context(), files, false, gens)
			if !noManifest {
				if err := store.Write(m); err != nil {
					output.Warn("could not write build manifest", "path", store.Path(), "err", err)
				}
			}
			if buildErr != nil {
				return buildErr
			}

			for _, f := range m.Files {
				output.Println(f)
			}
			output.Info("generated packaging files", "files", len(m.Files), "out_dir", opts.cfg.OutDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "do not write the build manifest")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove the files of the previous build first")
	cmd.Flags().StringSliceVar(&genIDs, "generator", nil, "run only the named generators (default all)")

	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [spec files...]",
		Short: "Load, resolve and check specs without writing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := opts.specFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			m, err := opts.runBuild(cmd.Context(), files, true, nil)
			if err != nil {
				return err
			}
			output.Println(fmt.Sprintf("ok: %d packages, %d instances", len(m.Packages), len(m.Instances())))
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list [spec files...]",
		Short: "List the instances that would be built",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := opts.specFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			m, err := opts.runBuild(cmd.Context(), files, true, nil)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), m.Instances())
			}
			for _, inst := range m.Instances() {
				output.Println(fmt.Sprintf("%s\t%s", inst.Name, inst.Shape))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}

// lookupGenerators resolves generator IDs. No IDs selects every generator.
func lookupGenerators(ids []string) ([]generator.Generator, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	gens := make([]generator.Generator, 0, len(ids))
	for _, id := range ids {
		g, ok := generator.Lookup(id)
		if !ok {
			return nil, clierr.New(clierr.ExitUsage, fmt.Sprintf("unknown generator %q", id))
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// cleanOutputs removes the files listed in the last manifest, then the
// manifest itself.
func cleanOutputs(store *build.ManifestStore, outDir string) error {
	prev, err := store.Read()
	if err != nil {
		return err
	}
	if prev != nil {
		for _, name := range prev.Files {
			path := filepath.Join(outDir, name)
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			output.Debug("removed stale output", "path", path)
		}
	}
	return store.Reset()
}
