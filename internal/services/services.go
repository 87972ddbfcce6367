// Package services holds the category and transaction stores. They apply
// the business rules and own every acquire and release of a backend handle.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/log"
	"budget/internal/ports"
)

// EventPublisher announces committed writes. *amqp.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.Event) error
}

// base is shared by both stores.
type base struct {
	backend ports.Backend
	events  EventPublisher
	logger  *log.Logger
	now     func() time.Time
}

func newBase(backend ports.Backend, events EventPublisher, logger *log.Logger, component string) base {
	if logger == nil {
		logger = log.Discard()
	}
	return base{
		backend: backend,
		events:  events,
		logger:  logger.WithComponent(component),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// withConn acquires a handle, runs fn and releases the handle on every path.
func withConn[T any](ctx context.Context, b ports.Backend, fn func(ports.Conn) (T, error)) (T, error) {
	var zero T
	conn, err := b.Acquire(ctx)
	if err != nil {
		return zero, fmt.Errorf("acquire backend: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

// publish sends an event when a publisher is configured. Failures are
// logged and never reach the caller; the write is already committed.
func (b base) publish(ctx context.Context, t amqp.EventType, id string) {
	if b.events == nil {
		return
	}
	if err := b.events.Publish(ctx, amqp.NewEvent(t, id)); err != nil {
		b.logger.WarnContext(ctx, "Failed to publish event",
			log.FieldEventType, t,
			"id", id,
			log.FieldError, err)
	}
}

// logFailure records a backend failure. Not-found and validation outcomes
// are normal results and are not logged here.
func (b base) logFailure(ctx context.Context, op string, err error, fields log.LogFields) {
	if fields == nil {
		fields = log.NewFields()
	}
	b.logger.ErrorContext(ctx, "Backend operation failed", fields.WithOperation(op).WithError(err).ToSlice()...)
}

// validID reports whether id can name a stored row. Every backend issues
// UUIDs, so anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
