package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Long:  `Serve the category, transaction and summary endpoints until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.logger.Error("Failed to release resources", log.FieldError, err.Error())
				}
			}()

			srv := apphttp.NewServer(apphttp.Config{
				Addr:               ":" + a.cfg.Port,
				CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
				RateLimitPerMinute: a.cfg.RateLimitPerMinute,
				CacheTTL:           a.cfg.CacheTTL,
				CacheSize:          a.cfg.CacheSize,
			}, a.categories, a.transactions, a.backend.Backend, a.logger)

			srv.ReadTimeout = 10 * time.Second
			srv.WriteTimeout = 10 * time.Second
			srv.IdleTimeout = 60 * time.Second
			srv.MaxHeaderBytes = 1 << 16

			return runServer(ctx, srv, a.logger, a.cfg.ShutdownTimeout)
		},
	}
}

// runServer serves until ctx is cancelled, then shuts down within timeout.
func runServer(ctx context.Context, srv *apphttp.Server, logger *log.Logger, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budget server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, timeout, srv.Shutdown)
	})

	return g.Wait()
}
