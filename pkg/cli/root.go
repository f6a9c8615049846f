// Package cli implements the sqlbridge command line interface.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/catalog"
	"github.com/ekaya-inc/sqlbridge/pkg/config"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

var (
	cfgPath string
	envFile string
	verbose bool
	loaded  *config.Config
	rootLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sqlbridge",
	Short: "Run SQL against any configured database through one pooled client",
	Long: `sqlbridge is a generic relational database client: point it at a
database type from its catalog (postgres, mysql, sqlserver, or your own),
and it manages a bounded connection pool, runs parameterized queries with
cancellation and timeouts, and prints the results.

Configuration comes from config.yaml and SQLBRIDGE_* environment
variables; a .env file is honored when present.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config.yaml (default ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before reading config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version must print even when no config is readable.
		if cmd == versionCmd {
			return nil
		}

		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		} else {
			_ = godotenv.Load()
		}

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		loaded = cfg

		rootLog = logging.NewLogger(verbose || cfg.Verbose)

		if cfg.CatalogFile != "" {
			if _, err := catalog.LoadFile(cfg.CatalogFile); err != nil {
				return fmt.Errorf("load catalog file: %w", err)
			}
		}
		return nil
	}
}
