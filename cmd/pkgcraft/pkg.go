package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkgcraft/internal/regen"
	"pkgcraft/pkg/metadata"
	"pkgcraft/pkg/target"
)

var pkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "query packages across configured repositories",
}

var pkgShowCmd = &cobra.Command{
	Use:   "show <target>",
	Short: "list packages matching a target string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		res, err := target.Resolve(cfg, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range res.Repos.Repos() {
			for _, cpv := range r.IterRestrict(res.Restrict) {
				line := fmt.Sprintf("%s::%s", cpv, r.ID())
				if m, err := metadata.ReadCacheEntry(regen.CacheEntryPath(r, cpv), r.EAPI()); err == nil {
					line += "  " + m.Description
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	pkgCmd.AddCommand(pkgShowCmd)
}
