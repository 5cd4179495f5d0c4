package main

import (
	"context"
	"radiomirchi/internal/config"
	"radiomirchi/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCommand constructs the 'migrate' subcommand that creates the
// MongoDB indexes the queries rely on.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Creates missing database indexes",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			strg, closeStrg := getMongo(ctx, cfg)
			defer closeStrg()

			if err := strg.EnsureIndexes(ctx); err != nil {
				logger.Fatal(ctx, "could not ensure mongodb indexes", zap.Error(err))
			}
			logger.Info(ctx, "database is up to date", zap.String("database", cfg.MongoDB.Database))
		},
	}

	return cmd
}
