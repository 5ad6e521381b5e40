package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		if _, err := openDB(cfg); err != nil {
			return err
		}
		logger.Info("migration finished", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
