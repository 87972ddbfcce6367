package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/ports"
)

// TransactionService manages transactions. Deletion is permanent. The
// category reference is checked by the backend, not here.
type TransactionService struct {
	base
}

func NewTransactionService(backend ports.Backend, events EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{base: newBase(backend, events, logger, log.ComponentTransaction)}
}

// ListAll returns every transaction, newest date first.
func (s *TransactionService) ListAll(ctx context.Context) ([]core.Transaction, error) {
	return s.list(ctx, ports.TransactionFilter{})
}

// ListByType returns transactions of one type, newest date first.
func (s *TransactionService) ListByType(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	if !t.IsValid() {
		return nil, &core.ValidationError{Entity: core.EntityTransaction, Field: "type", Kind: core.InvalidField}
	}
	return s.list(ctx, ports.TransactionFilter{Type: t})
}

func (s *TransactionService) list(ctx context.Context, filter ports.TransactionFilter) ([]core.Transaction, error) {
	txs, err := withConn(ctx, s.backend, func(c ports.Conn) ([]core.Transaction, error) {
		return c.ListTransactions(ctx, filter)
	})
	if err != nil {
		s.logFailure(ctx, log.OpList, err, log.LogFields{log.FieldTransactionType: string(filter.Type)})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Get returns a transaction or ports.ErrNotFound.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	if !validID(id) {
		return core.Transaction{}, ports.ErrNotFound
	}
	tx, err := withConn(ctx, s.backend, func(c ports.Conn) (core.Transaction, error) {
		return c.GetTransaction(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.Transaction{}, err
		}
		s.logFailure(ctx, log.OpRead, err, log.LogFields{log.FieldTransactionID: id})
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// Create validates the input and stores a new transaction. A category id
// that names no row fails with a foreign key BackendError.
func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	fields, err := in.Fields()
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	tx := core.Transaction{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	tx.Apply(fields)

	_, err = withConn(ctx, s.backend, func(c ports.Conn) (struct{}, error) {
		return struct{}{}, c.InsertTransaction(ctx, tx)
	})
	if err != nil {
		s.logFailure(ctx, log.OpCreate, err, log.NewFields().WithTransaction(tx))
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created", log.NewFields().WithTransaction(tx).WithOperation(log.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.TransactionCreated, tx.ID)
	return tx, nil
}

// Update replaces every mutable field of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	fields, err := in.Fields()
	if err != nil {
		return core.Transaction{}, err
	}
	if !validID(id) {
		return core.Transaction{}, ports.ErrNotFound
	}

	tx, err := withConn(ctx, s.backend, func(c ports.Conn) (core.Transaction, error) {
		return c.ReplaceTransaction(ctx, id, fields, s.now())
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.Transaction{}, err
		}
		s.logFailure(ctx, log.OpUpdate, err, log.LogFields{log.FieldTransactionID: id, log.FieldCategoryID: fields.CategoryID})
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", log.NewFields().WithTransaction(tx).WithOperation(log.OpUpdate).ToSlice()...)
	s.publish(ctx, amqp.TransactionUpdated, tx.ID)
	return tx, nil
}

// Delete removes a transaction and reports whether a row was removed.
func (s *TransactionService) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	deleted, err := withConn(ctx, s.backend, func(c ports.Conn) (bool, error) {
		return c.DeleteTransaction(ctx, id)
	})
	if err != nil {
		s.logFailure(ctx, log.OpDelete, err, log.LogFields{log.FieldTransactionID: id})
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}

	if deleted {
		s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)
		s.publish(ctx, amqp.TransactionDeleted, id)
	}
	return deleted, nil
}

// Summary totals all transactions per currency.
func (s *TransactionService) Summary(ctx context.Context) ([]core.CurrencySummary, error) {
	txs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.Summarize(txs), nil
}
