// Package cmd defines the CLI commands for the athlecrawl executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/athledata/athlecrawl/internal/metrics"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "athlecrawl",
		Short: "Seasonal crawler for the French athletics federation database",
		Long: `athlecrawl walks the federation's paginated club and athlete listings
season by season and upserts the extracted records into Postgres,
keeping identities stable across the site's two id-issuing generations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Missing .env is the common case outside local dev.
			_ = godotenv.Load()
			metrics.Init()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment used when empty)")
	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "athlecrawl:", err)
		return 1
	}
	return 0
}
