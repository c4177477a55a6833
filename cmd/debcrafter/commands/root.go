// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Debcrafter - Debcrafter compiles declarative package specs into Debian packaging artifacts.
It loads TOML or YAML specs, resolves the packages they include, expands variants and writes generated files such as debconf templates.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/debcrafter/cmd/debcrafter/internal/clierr"
	"github.com/bartekus/debcrafter/internal/config"
	"github.com/bartekus/debcrafter/internal/output"
)

// Version is set at link time; DEBCRAFTER_VERSION overrides it.
var Version = "0.0.0-dev"

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	configFile string
	cfg        *config.Config
}

// NewRootCmd constructs the debcrafter root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("DEBCRAFTER_VERSION")
	if version == "" {
		version = Version
	}

	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "debcrafter",
		Short:         "Debcrafter - Debian packaging from declarative specs",
		Long:          "Debcrafter loads package specs, resolves their includes and variants, and generates Debian packaging files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.ExitUsage, "invalid usage", err)
	})

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable verbose output")
	pf.StringVar(&opts.configFile, "config", "", "config file (default ./"+config.DefaultConfigFile+" if present)")
	pf.String("spec-dir", config.DefaultSpecDir, "directory holding spec files and their includes")
	pf.String("out-dir", config.DefaultOutDir, "directory receiving generated files")
	pf.String("include-ext", config.DefaultIncludeExt, "extension of spec files")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of Debcrafter",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Debcrafter version %s\n", version)
		},
	})

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newListCmd(opts))

	return cmd
}

// load resolves the configuration for cmd and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return clierr.Wrap(clierr.ExitUsage, "invalid flags", err)
	}
	cfg, err := loader.Load(o.configFile)
	if err != nil {
		return clierr.Wrap(clierr.ExitUsage, "loading configuration", err)
	}
	o.cfg = cfg

	output.SetupLogging(cfg.Verbose)
	output.SetOutput(cmd.OutOrStdout())
	if used := loader.ConfigFileUsed(); used != "" {
		output.Debug("loaded config", "path", used)
	}
	return nil
}
