package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/ports"
)

func openSQLite(t *testing.T) *Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.db")
	repo, err := Open(context.Background(), Options{Dialect: SQLite, DSN: path, Migrate: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func acquire(t *testing.T, repo *Repository) ports.Conn {
	t.Helper()
	c, err := repo.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

func TestSQLiteCategoryLifecycle(t *testing.T) {
	repo := openSQLite(t)
	c := acquire(t, repo)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	cat := core.Category{ID: uuid.NewString(), Name: "Food & Dining", Color: core.Palette()[0], CreatedAt: now, UpdatedAt: now}
	require.NoError(t, c.InsertCategory(ctx, cat))

	n, err := c.CountActiveCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := c.GetActiveCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.Name, got.Name)
	assert.Nil(t, got.DeletedAt)

	later := now.Add(time.Second)
	updated, err := c.UpdateCategoryName(ctx, cat.ID, "Food", later)
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)
	assert.Equal(t, cat.Color, updated.Color)
	assert.True(t, updated.UpdatedAt.Equal(later))

	ok, err := c.SoftDeleteCategory(ctx, cat.ID, later)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SoftDeleteCategory(ctx, cat.ID, later)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.GetActiveCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	cats, err := c.ListActiveCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	// The row survives with deleted_at set.
	var deletedAt *time.Time
	require.NoError(t, repo.DB().Get(&deletedAt, `SELECT deleted_at FROM categories WHERE id = ?`, cat.ID))
	require.NotNil(t, deletedAt)
	assert.True(t, deletedAt.Equal(later))
}

func TestSQLiteTransactions(t *testing.T) {
	repo := openSQLite(t)
	c := acquire(t, repo)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	cat := core.Category{ID: uuid.NewString(), Name: "Food", Color: "blue", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, c.InsertCategory(ctx, cat))

	mk := func(name string, date core.Date, ty core.TransactionType, created time.Time) core.Transaction {
		return core.Transaction{
			ID: uuid.NewString(), Name: name, Amount: decimal.RequireFromString("25.50"), Currency: core.EUR,
			Date: date, Type: ty, CategoryID: cat.ID, CreatedAt: created, UpdatedAt: created,
		}
	}
	older := mk("older", core.NewDate(2024, 9, 1), core.Expense, now)
	first := mk("first", core.NewDate(2024, 9, 2), core.Expense, now)
	second := mk("second", core.NewDate(2024, 9, 2), core.Income, now.Add(time.Millisecond))
	for _, tx := range []core.Transaction{older, first, second} {
		require.NoError(t, c.InsertTransaction(ctx, tx))
	}

	txs, err := c.ListTransactions(ctx, ports.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{"second", "first", "older"}, []string{txs[0].Name, txs[1].Name, txs[2].Name})
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, "2024-09-02", txs[0].Date.String())

	incomes, err := c.ListTransactions(ctx, ports.TransactionFilter{Type: core.Income})
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, "second", incomes[0].Name)

	f := first.Fields()
	f.Name = "replaced"
	f.Note = "with note"
	replaced, err := c.ReplaceTransaction(ctx, first.ID, f, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "replaced", replaced.Name)
	assert.Equal(t, "with note", replaced.Note)
	assert.True(t, replaced.CreatedAt.Equal(first.CreatedAt))

	ok, err := c.DeleteTransaction(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.DeleteTransaction(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = c.GetTransaction(ctx, first.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSQLiteForeignKeyEnforced(t *testing.T) {
	repo := openSQLite(t)
	c := acquire(t, repo)
	now := time.Now().UTC()

	err := c.InsertTransaction(context.Background(), core.Transaction{
		ID: uuid.NewString(), Name: "Orphan", Amount: decimal.NewFromInt(1), Currency: core.EUR,
		Date: core.NewDate(2024, 1, 1), Type: core.Expense, CategoryID: uuid.NewString(),
		CreatedAt: now, UpdatedAt: now,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrForeignKey)
}

func TestSQLiteMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	dsn := SQLiteDSN(path)
	require.NoError(t, RunMigrations(SQLite, dsn))
	require.NoError(t, RunMigrations(SQLite, dsn), "second run is a no-op")

	v, dirty, err := MigrationVersion(SQLite, dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)

	require.NoError(t, RollbackMigrations(SQLite, dsn, 1))
	v, _, err = MigrationVersion(SQLite, dsn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}
