package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Options wires the router to its collaborators. Registry may be nil when metrics are off.
type Options struct {
	Conf        *util.AppConfig
	DB          *db.DB
	Statuses    *timeline.Service
	InstanceKey *util.RsaKeyPair
	Registry    *prometheus.Registry
	// Done stops background work started by middleware.
	Done <-chan struct{}
}

func NewRouter(opts Options) *gin.Engine {
	s := &Server{
		conf:        opts.Conf,
		db:          opts.DB,
		statuses:    opts.Statuses,
		instanceKey: opts.InstanceKey,
	}

	g := gin.New()
	g.Use(gin.Recovery())
	if gin.Mode() != gin.TestMode {
		g.Use(gin.Logger())
	}
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter, opts.Done))

	if opts.Conf.Conf.WithMetrics && opts.Registry != nil {
		s.metrics = NewMetrics(opts.Registry)
		g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := g.Group("/api/v1", CORS())
	api.GET("/accounts/:id/statuses", s.handleStatuses)
	api.OPTIONS("/accounts/:id/statuses", func(c *gin.Context) {})

	g.GET("/.well-known/webfinger", s.handleWebfinger)
	g.GET("/actor", s.handleInstanceActor)
	g.GET("/users/:username", s.handleActor)
	g.GET("/users/:username/outbox", s.handleOutbox)
	g.GET("/users/:username/feed", s.handleFeed)
	g.GET("/ap/o/:id", s.handleObject)

	return g
}

// Serve runs the router until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, conf *util.AppConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.HttpPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
