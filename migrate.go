package main

import (
	"github.com/deemkeen/statusbridge/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConf()
		if err != nil {
			return err
		}

		path := databasePath(conf)
		log.Info().Str("db", path).Msg("Running database migrations...")
		database, err := db.Open(path)
		if err != nil {
			return err
		}
		defer database.Close()
		log.Info().Msg("Database migrations complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
