// Package main implements pkgcraft, a thin cobra-based front end over the
// library packages: repository metadata regeneration and target lookup.
//
// # File Index
//
//   - main.go    - entry point, rootCmd, global flags, logger setup
//   - version.go - versionCmd
//   - repo.go    - repoCmd, repoMetadataCmd (spec.md §4.H driver)
//   - pkg.go     - pkgCmd, pkgShowCmd (spec.md §4.J target resolution)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pkgcraft/internal/logging"
	"pkgcraft/pkg/pkgconfig"
)

var (
	verbose   bool
	configDir string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "pkgcraft",
	Short: "pkgcraft - ebuild repository and dependency toolkit",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Init(l)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "override the toolkit config directory")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the toolkit data directory")

	rootCmd.AddCommand(versionCmd, repoCmd, pkgCmd)
}

// loadConfig builds the toolkit Config, honoring --config-dir/--data-dir
// overrides; falls back to pkgconfig.Load's environment-derived defaults
// (including the PKGCRAFT_NO_CONFIG escape hatch) when neither is set.
func loadConfig() (*pkgconfig.Config, error) {
	if configDir == "" && dataDir == "" {
		return pkgconfig.Load()
	}
	cd, dd := configDir, dataDir
	if cd == "" {
		cd = pkgconfig.ConfigDir()
	}
	if dd == "" {
		dd = pkgconfig.DataDir()
	}
	return pkgconfig.New(cd, dd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
