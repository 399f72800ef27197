package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/deemkeen/statusbridge/util"
	"github.com/deemkeen/statusbridge/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConf()
		if err != nil {
			return err
		}
		log.Info().Str("config", util.PrettyPrint(conf)).Msg("Configuration")

		a, err := newApp(conf)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var registry *prometheus.Registry
		if conf.Conf.WithMetrics {
			registry = prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}

		gin.SetMode(gin.ReleaseMode)
		router := web.NewRouter(web.Options{
			Conf:        conf,
			DB:          a.db,
			Statuses:    a.statuses,
			InstanceKey: a.instanceKey,
			Registry:    registry,
			Done:        ctx.Done(),
		})
		return web.Serve(ctx, conf, router)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
