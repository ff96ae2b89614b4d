package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wonny/krxflow/internal/infra/database/postgres"
)

// migrateCmd goose 마이그레이션 적용
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "스키마 마이그레이션 적용",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Migrate(ctx); err != nil {
			return err
		}

		v, err := pool.MigrationVersion(ctx)
		if err != nil {
			return err
		}
		log.Info().Int64("version", v).Msg("Migrations applied")
		fmt.Fprintf(cmd.OutOrStdout(), "✅ migration version %d\n", v)
		return nil
	},
}
