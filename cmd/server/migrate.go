package main

import (
	"github.com/spf13/cobra"

	"github.com/ministryofjustice/operations-engineering-reports/internal/adapter/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the report table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		return store.Migrate(ctx, db, cfg.DatabaseTable)
	},
}
