package cmd

import (
	"github.com/spf13/cobra"

	config "task-marketplace.com/task-marketplace/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.SlogLevel())

		db, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		logger.Info("schema migrated", "driver", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
