package main

import (
	"github.com/spf13/cobra"

	"accidentapi/internal/config"
	"accidentapi/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQL schema",
		Long:  `Create the tickets, attachments and users tables when they do not exist. The JSON store needs no migration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.Init(cfg.Logger, nil)

			if cfg.Store.Backend == config.StoreJSON {
				log.Info("db_migration_skip", "detail", "json store has no schema")
				return nil
			}
			store, err := openStore(cmd.Context(), cfg, log, true)
			if err != nil {
				return err
			}
			return store.Close()
		},
	}
}
