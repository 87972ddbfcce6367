package main

import (
	"context"
	"errors"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/services"
)

// app bundles what every data command needs.
type app struct {
	cfg          *config.Config
	logger       *log.Logger
	backend      *backend.BackendResult
	events       *amqp.Client
	categories   *services.CategoryService
	transactions *services.TransactionService
}

type appOptions struct {
	// withEvents dials the broker when AMQP_URL is set.
	withEvents bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	a.backend, err = cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if opts.withEvents {
		a.events, err = cli.ConnectEvents(cfg, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	// A nil *amqp.Client must not reach the services as a non-nil interface.
	var publisher services.EventPublisher
	if a.events != nil {
		publisher = a.events
	}
	a.categories = services.NewCategoryService(a.backend.Backend, publisher, logger)
	a.transactions = services.NewTransactionService(a.backend.Backend, publisher, logger)
	return a, nil
}

// Close releases the broker connection and the backend.
func (a *app) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.backend != nil && a.backend.Cleanup != nil {
		errs = append(errs, a.backend.Cleanup())
	}
	return errors.Join(errs...)
}
