package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"budget/internal/core"
	"budget/internal/ports"
)

const (
	tableCategories   = "categories"
	tableTransactions = "transactions"
)

var (
	categoryColumns    = []string{"id", "name", "color", "deleted_at", "created_at", "updated_at"}
	transactionColumns = []string{"id", "name", "amount", "currency", "date", "note", "type", "category_id", "created_at", "updated_at"}

	activeCategory = squirrel.Eq{"deleted_at": nil}
)

// conn is a ports.Conn backed by one pooled database connection.
type conn struct {
	c      *sqlx.Conn
	sb     squirrel.StatementBuilderType
	logger *slog.Logger
}

func (c *conn) Release() {
	if err := c.c.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		c.logger.Warn("Failed to release connection", "error", err)
	}
}

func returning(cols []string) string {
	return "RETURNING " + strings.Join(cols, ", ")
}

func (c *conn) CountActiveCategories(ctx context.Context) (int, error) {
	query, args, err := c.sb.Select("COUNT(*)").From(tableCategories).Where(activeCategory).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := c.c.GetContext(ctx, &n, query, args...); err != nil {
		return 0, translate("count", tableCategories, err)
	}
	return n, nil
}

func (c *conn) ListActiveCategories(ctx context.Context) ([]core.Category, error) {
	query, args, err := c.sb.Select(categoryColumns...).
		From(tableCategories).
		Where(activeCategory).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	categories := []core.Category{}
	if err := c.c.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, translate("list", tableCategories, err)
	}
	return categories, nil
}

func (c *conn) GetActiveCategory(ctx context.Context, id string) (core.Category, error) {
	query, args, err := c.sb.Select(categoryColumns...).
		From(tableCategories).
		Where(squirrel.And{squirrel.Eq{"id": id}, activeCategory}).
		ToSql()
	if err != nil {
		return core.Category{}, fmt.Errorf("build get query: %w", err)
	}
	var cat core.Category
	if err := c.c.GetContext(ctx, &cat, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ports.ErrNotFound
		}
		return core.Category{}, translate("get", tableCategories, err)
	}
	return cat, nil
}

func (c *conn) InsertCategory(ctx context.Context, cat core.Category) error {
	query, args, err := c.sb.Insert(tableCategories).
		Columns(categoryColumns...).
		Values(cat.ID, cat.Name, cat.Color, cat.DeletedAt, cat.CreatedAt, cat.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if _, err := c.c.ExecContext(ctx, query, args...); err != nil {
		return translate("insert", tableCategories, err)
	}
	c.logger.DebugContext(ctx, "Category inserted", "id", cat.ID, "color", cat.Color)
	return nil
}

func (c *conn) UpdateCategoryName(ctx context.Context, id, name string, at time.Time) (core.Category, error) {
	query, args, err := c.sb.Update(tableCategories).
		Set("name", name).
		Set("updated_at", at).
		Where(squirrel.And{squirrel.Eq{"id": id}, activeCategory}).
		Suffix(returning(categoryColumns)).
		ToSql()
	if err != nil {
		return core.Category{}, fmt.Errorf("build update query: %w", err)
	}
	var cat core.Category
	if err := c.c.QueryRowxContext(ctx, query, args...).StructScan(&cat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ports.ErrNotFound
		}
		return core.Category{}, translate("update", tableCategories, err)
	}
	return cat, nil
}

func (c *conn) SoftDeleteCategory(ctx context.Context, id string, at time.Time) (bool, error) {
	query, args, err := c.sb.Update(tableCategories).
		Set("deleted_at", at).
		Set("updated_at", at).
		Where(squirrel.And{squirrel.Eq{"id": id}, activeCategory}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build soft delete query: %w", err)
	}
	return c.execAffected(ctx, "soft_delete", tableCategories, query, args)
}

func (c *conn) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]core.Transaction, error) {
	q := c.sb.Select(transactionColumns...).From(tableTransactions)
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"type": string(filter.Type)})
	}
	query, args, err := q.OrderBy("date DESC", "created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	txs := []core.Transaction{}
	if err := c.c.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, translate("list", tableTransactions, err)
	}
	return txs, nil
}

func (c *conn) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	query, args, err := c.sb.Select(transactionColumns...).
		From(tableTransactions).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build get query: %w", err)
	}
	var tx core.Transaction
	if err := c.c.GetContext(ctx, &tx, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ports.ErrNotFound
		}
		return core.Transaction{}, translate("get", tableTransactions, err)
	}
	return tx, nil
}

func (c *conn) InsertTransaction(ctx context.Context, t core.Transaction) error {
	query, args, err := c.sb.Insert(tableTransactions).
		Columns(transactionColumns...).
		Values(t.ID, t.Name, t.Amount, string(t.Currency), t.Date, t.Note, string(t.Type), t.CategoryID, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if _, err := c.c.ExecContext(ctx, query, args...); err != nil {
		return translate("insert", tableTransactions, err)
	}
	c.logger.DebugContext(ctx, "Transaction inserted", "id", t.ID, "category_id", t.CategoryID)
	return nil
}

func (c *conn) ReplaceTransaction(ctx context.Context, id string, f core.TransactionFields, at time.Time) (core.Transaction, error) {
	query, args, err := c.sb.Update(tableTransactions).
		SetMap(map[string]any{
			"name":        f.Name,
			"amount":      f.Amount,
			"currency":    string(f.Currency),
			"date":        f.Date,
			"note":        f.Note,
			"type":        string(f.Type),
			"category_id": f.CategoryID,
			"updated_at":  at,
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning(transactionColumns)).
		ToSql()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build update query: %w", err)
	}
	var tx core.Transaction
	if err := c.c.QueryRowxContext(ctx, query, args...).StructScan(&tx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ports.ErrNotFound
		}
		return core.Transaction{}, translate("update", tableTransactions, err)
	}
	return tx, nil
}

func (c *conn) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	query, args, err := c.sb.Delete(tableTransactions).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}
	return c.execAffected(ctx, "delete", tableTransactions, query, args)
}

func (c *conn) execAffected(ctx context.Context, op, table, query string, args []any) (bool, error) {
	res, err := c.c.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translate(op, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate(op, table, err)
	}
	return n > 0, nil
}
