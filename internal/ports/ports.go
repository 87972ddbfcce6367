// Package ports defines the persistence boundary the stores are written
// against. Relational and in-memory backends both implement it.
package ports

import (
	"context"
	"time"

	"budget/internal/core"
)

type (
	// Backend hands out scoped handles. Every Conn obtained from Acquire
	// must be released, on success and failure alike.
	Backend interface {
		Acquire(ctx context.Context) (Conn, error)
		Ping(ctx context.Context) error
		Close() error
		Name() string
	}

	// Conn is a single acquired handle. Its methods map one to one onto
	// backend reads and writes and apply no business rules.
	Conn interface {
		CategoryConn
		TransactionConn
		Release()
	}

	CategoryConn interface {
		CountActiveCategories(ctx context.Context) (int, error)
		ListActiveCategories(ctx context.Context) ([]core.Category, error)
		// GetActiveCategory returns ErrNotFound for unknown or soft-deleted ids.
		GetActiveCategory(ctx context.Context, id string) (core.Category, error)
		InsertCategory(ctx context.Context, c core.Category) error
		// UpdateCategoryName returns ErrNotFound unless the category is active.
		UpdateCategoryName(ctx context.Context, id, name string, at time.Time) (core.Category, error)
		// SoftDeleteCategory reports whether an active row was marked deleted.
		SoftDeleteCategory(ctx context.Context, id string, at time.Time) (bool, error)
	}

	TransactionConn interface {
		// ListTransactions orders by date then creation time, newest first.
		ListTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		InsertTransaction(ctx context.Context, t core.Transaction) error
		// ReplaceTransaction overwrites every mutable field.
		ReplaceTransaction(ctx context.Context, id string, f core.TransactionFields, at time.Time) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) (bool, error)
	}

	TransactionFilter struct {
		// Type restricts the listing when non-empty.
		Type core.TransactionType
	}
)
