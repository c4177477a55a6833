// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/bartekus/debcrafter/cmd/debcrafter/commands"
	"github.com/bartekus/debcrafter/cmd/debcrafter/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
