package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/famfund/internal/config"
	"github.com/mmynk/famfund/internal/storage/sqlite"
	"github.com/mmynk/famfund/pkg/logging"
)

func newMigrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

			if err := sqlite.Migrate(cfg.DBPath); err != nil {
				return err
			}
			slog.Info("Migrations applied", "database", cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	return cmd
}
