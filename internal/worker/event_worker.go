package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/ports"
)

type (
	CategoryReader interface {
		Get(ctx context.Context, id string) (core.Category, error)
	}

	TransactionReader interface {
		Get(ctx context.Context, id string) (core.Transaction, error)
	}
)

// EventWorker follows domain events and resolves each one against the
// current state of the store.
type EventWorker struct {
	categories   CategoryReader
	transactions TransactionReader
	logger       *log.Logger

	processed int64
	missing   int64
	failed    int64
}

// Stats counts handled events since the worker started.
type Stats struct {
	Processed int64
	Missing   int64
	Failed    int64
}

func NewEventWorker(categories CategoryReader, transactions TransactionReader, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventWorker{
		categories:   categories,
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single event. A returned error requeues the
// delivery, so only store failures are reported; records that no longer
// exist are logged and acknowledged.
func (w *EventWorker) HandleEvent(ctx context.Context, e *amqp.Event) error {
	var err error
	switch e.Entity {
	case core.EntityCategory:
		err = w.handleCategory(ctx, e)
	case core.EntityTransaction:
		err = w.handleTransaction(ctx, e)
	default:
		w.logger.WarnContext(ctx, "Ignoring event for unknown entity",
			log.FieldEventType, string(e.Type), "entity", e.Entity, "id", e.ID)
		return nil
	}

	switch {
	case err == nil:
		atomic.AddInt64(&w.processed, 1)
		return nil
	case errors.Is(err, ports.ErrNotFound):
		atomic.AddInt64(&w.missing, 1)
		w.logger.InfoContext(ctx, "Event target no longer exists",
			log.FieldEventType, string(e.Type), "id", e.ID)
		return nil
	default:
		atomic.AddInt64(&w.failed, 1)
		return fmt.Errorf("resolve %s %s: %w", e.Entity, e.ID, err)
	}
}

func (w *EventWorker) handleCategory(ctx context.Context, e *amqp.Event) error {
	if e.Type == amqp.CategoryDeleted {
		w.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, e.ID, "at", e.Timestamp)
		return nil
	}
	c, err := w.categories.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Category changed",
		log.FieldEventType, string(e.Type),
		log.FieldCategoryID, c.ID,
		log.FieldCategoryName, c.Name,
		log.FieldColor, c.Color)
	return nil
}

func (w *EventWorker) handleTransaction(ctx context.Context, e *amqp.Event) error {
	if e.Type == amqp.TransactionDeleted {
		w.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, e.ID, "at", e.Timestamp)
		return nil
	}
	t, err := w.transactions.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Transaction changed",
		log.FieldEventType, string(e.Type),
		log.FieldTransactionID, t.ID,
		log.FieldTransactionType, string(t.Type),
		log.FieldAmount, core.FormatDecimal(t.Amount, t.Currency),
		"date", core.FormatDate(t.Date.String()))
	return nil
}

func (w *EventWorker) Stats() Stats {
	return Stats{
		Processed: atomic.LoadInt64(&w.processed),
		Missing:   atomic.LoadInt64(&w.missing),
		Failed:    atomic.LoadInt64(&w.failed),
	}
}
