package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkgcraft/internal/regen"
	"pkgcraft/pkg/pkgconfig"
	"pkgcraft/pkg/repo"
	"pkgcraft/pkg/shell"
)

var (
	regenJobs   int
	regenForce  bool
	regenVerify bool
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "operate on ebuild repositories",
}

var repoMetadataCmd = &cobra.Command{
	Use:   "metadata <path>",
	Short: "regenerate (or verify) a repository's metadata cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r, err := resolveRepo(cfg, path)
		if err != nil {
			return err
		}

		interp := shell.NewTreeSitterReader()
		defer interp.Close()

		opts := regen.Options{
			Jobs:   regenJobs,
			Force:  regenForce,
			Verify: regenVerify,
			Progress: func(done, total int) {
				fmt.Fprintf(cmd.OutOrStdout(), "\r%d/%d", done, total)
			},
		}
		if err := regen.Run(cmd.Context(), r, interp, opts); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	repoMetadataCmd.Flags().IntVar(&regenJobs, "jobs", 4, "number of concurrent regen workers")
	repoMetadataCmd.Flags().BoolVar(&regenForce, "force", false, "regenerate every target, ignoring cache validity")
	repoMetadataCmd.Flags().BoolVar(&regenVerify, "verify", false, "check cache validity without writing")

	repoCmd.AddCommand(repoMetadataCmd)
}

// resolveRepo finds path among cfg's configured repos (to inherit its
// resolved masters), falling back to a standalone Repository -- finalized
// against itself only -- when path names a repo cfg doesn't know about.
func resolveRepo(cfg *pkgconfig.Config, path string) (*repo.Repository, error) {
	for _, r := range cfg.Iter() {
		if r.Path() == path {
			return r, nil
		}
	}
	r, err := repo.New(path, 0, path)
	if err != nil {
		return nil, err
	}
	if err := r.Finalize(map[string]*repo.Repository{path: r}); err != nil {
		return nil, err
	}
	return r, nil
}
