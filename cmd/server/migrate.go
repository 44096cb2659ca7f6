package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/logging"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup()
			cfg := config.Load()
			if cfg.DBPassword == "" {
				return errors.New("DB_PASSWORD environment variable is required")
			}

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			models := database.AllModels()
			if err := database.MigrateModels(db, models); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("migration completed", "models", len(models))
			return nil
		},
	}
}
