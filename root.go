package main

import (
	"fmt"
	"os"

	"github.com/deemkeen/statusbridge/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   util.Name,
	Short: "Statusbridge serves Mastodon-compatible account statuses for local and federated actors",
	Long: `Statusbridge hosts local ActivityPub actors and exposes their statuses through the
Mastodon accounts API. Statuses of remote actors are discovered over WebFinger and
ingested from their outbox on demand.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConf reads the configuration and applies its log level.
func loadConf() (*util.AppConfig, error) {
	conf, err := util.ReadConf()
	if err != nil {
		return nil, err
	}
	if conf.Conf.LogLevel != "" {
		level, err := zerolog.ParseLevel(conf.Conf.LogLevel)
		if err != nil {
			log.Warn().Str("level", conf.Conf.LogLevel).Msg("Unknown log level, keeping default")
		} else {
			zerolog.SetGlobalLevel(level)
		}
	}
	return conf, nil
}
