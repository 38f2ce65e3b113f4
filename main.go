// @title Peymonak API
// @version 1.0
// @description Classifieds backend for the construction trades.

// @host localhost:8000
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"peymonak_backend/internal/app"
	"peymonak_backend/internal/config"
	"peymonak_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var (
		configDir   string
		migrate     bool
		migrateOnly bool
	)

	cmd := &cobra.Command{
		Use:          "peymonak",
		Short:        "Run the Peymonak classifieds API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cfg.ForceMigrate = migrate || migrateOnly
			cfg.MigrateOnly = migrateOnly

			if cfg.MigrateOnly {
				logger.InitLogger(cfg)
				defer logger.Log.Sync()
				if err := app.RunMigrations(cfg); err != nil {
					return err
				}
				logger.Log.Info("Database migration finished")
				return nil
			}

			application, err := app.NewApp(cfg)
			if err != nil {
				logger.Log.Error("Failed to start", zap.Error(err))
				return err
			}
			application.ConfigFile = filepath.Join(configDir, "config.yaml")
			return application.Run()
		},
	}

	cmd.Flags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run database migrations on startup, also in release mode")
	cmd.Flags().BoolVar(&migrateOnly, "migrate-only", false, "run database migrations and exit")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
