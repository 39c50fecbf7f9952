package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags; "devel" otherwise.
var version = "devel"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the pkgcraft version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "pkgcraft "+version)
		return nil
	},
}
