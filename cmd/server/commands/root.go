package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "realestate-site",
	Short: "Property listing site with signup, login and photo uploads",
	Long: `realestate-site serves a small property listing website backed by PostgreSQL.

Commands:
  serve    - Run the HTTP server (default)
  migrate  - Create the database tables and exit`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load configuration from this file instead of ./.env")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
