package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayush/realestate-site/internal/config"
	"github.com/ayush/realestate-site/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users and properties tables",
	Long: `Create the users and properties tables if they do not exist.

The serve command runs the same statements on startup, so this is only
needed when the schema must exist before the first deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	pool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.NewPostgresStore(pool).Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	logger.Info("schema is up to date")
	return nil
}
