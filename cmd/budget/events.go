package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/worker"
)

func eventsCmd() *cobra.Command {
	var statsInterval time.Duration

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow domain events",
		Long: `Consume category and transaction events from the AMQP queue and log
the current state of each record they name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if statsInterval <= 0 {
				return errors.New("stats interval must be positive")
			}

			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is required to follow events")
			}

			a, err := newApp(ctx, appOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			w := worker.NewEventWorker(a.categories, a.transactions, a.logger)
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				err := a.events.ConsumeEvents(gctx, w.HandleEvent)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})

			g.Go(func() error {
				ticker := time.NewTicker(statsInterval)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						s := w.Stats()
						a.logger.Info("Event worker stats",
							"processed", s.Processed,
							"missing", s.Missing,
							"failed", s.Failed,
							log.FieldBackend, a.backend.Backend.Name())
					}
				}
			})

			return g.Wait()
		},
	}

	cmd.Flags().DurationVar(&statsInterval, "stats-interval", time.Minute, "how often to log event counters")
	return cmd
}
