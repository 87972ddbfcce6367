package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/ports"
)

func mustAcquire(t *testing.T, s *Store) ports.Conn {
	t.Helper()
	c, err := s.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(c.Release)
	return c
}

func newCategory(id, name string, at time.Time) core.Category {
	return core.Category{ID: id, Name: name, Color: core.ColorOrDefault(0), CreatedAt: at, UpdatedAt: at}
}

func newTransaction(id, categoryID string, date core.Date, ty core.TransactionType, at time.Time) core.Transaction {
	return core.Transaction{
		ID: id, Name: "tx " + id, Amount: decimal.NewFromInt(10), Currency: core.EUR,
		Date: date, Type: ty, CategoryID: categoryID, CreatedAt: at, UpdatedAt: at,
	}
}

func TestCategorySoftDeleteKeepsRow(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	if err := c.InsertCategory(ctx, newCategory("c1", "Food", at)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err := c.SoftDeleteCategory(ctx, "c1", at.Add(time.Hour))
	if err != nil || !ok {
		t.Fatalf("soft delete: ok=%v err=%v", ok, err)
	}
	ok, err = c.SoftDeleteCategory(ctx, "c1", at.Add(2*time.Hour))
	if err != nil || ok {
		t.Fatalf("second soft delete should be a no-op: ok=%v err=%v", ok, err)
	}

	if _, err := c.GetActiveCategory(ctx, "c1"); err != ports.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n, _ := c.CountActiveCategories(ctx); n != 0 {
		t.Fatalf("expected 0 active, got %d", n)
	}
	if _, err := c.UpdateCategoryName(ctx, "c1", "Other", at); err != ports.ErrNotFound {
		t.Fatalf("update of deleted category: expected ErrNotFound, got %v", err)
	}

	// Row still present with the first deletion time.
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.categories) != 1 || s.categories[0].DeletedAt == nil {
		t.Fatalf("expected retained row with deleted_at, got %+v", s.categories)
	}
	if !s.categories[0].DeletedAt.Equal(at.Add(time.Hour)) {
		t.Fatalf("deleted_at overwritten: %v", s.categories[0].DeletedAt)
	}
}

func TestUpdateCategoryNameKeepsColor(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Now().UTC()

	cat := newCategory("c1", "Food", at)
	cat.Color = core.Palette()[5]
	if err := c.InsertCategory(ctx, cat); err != nil {
		t.Fatal(err)
	}
	got, err := c.UpdateCategoryName(ctx, "c1", "Groceries", at.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Groceries" || got.Color != cat.Color || !got.UpdatedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("unexpected update result: %+v", got)
	}
}

func TestListActiveCategoriesOrder(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Now().UTC()

	for _, cat := range []core.Category{
		newCategory("b", "Second", at.Add(time.Second)),
		newCategory("a", "First", at),
		newCategory("c", "Third", at.Add(2*time.Second)),
	} {
		if err := c.InsertCategory(ctx, cat); err != nil {
			t.Fatal(err)
		}
	}
	cats, err := c.ListActiveCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"First", "Second", "Third"}
	for i, name := range want {
		if cats[i].Name != name {
			t.Fatalf("position %d: want %s, got %s", i, name, cats[i].Name)
		}
	}
}

func TestTransactionOrderingAndTieBreak(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Now().UTC()

	if err := c.InsertCategory(ctx, newCategory("c1", "Food", at)); err != nil {
		t.Fatal(err)
	}
	d1 := core.NewDate(2024, 9, 1)
	d2 := core.NewDate(2024, 9, 2)
	for _, tx := range []core.Transaction{
		newTransaction("old", "c1", d1, core.Expense, at),
		newTransaction("tie-a", "c1", d2, core.Expense, at),
		newTransaction("tie-b", "c1", d2, core.Income, at),
		newTransaction("later", "c1", d2, core.Expense, at.Add(time.Second)),
	} {
		if err := c.InsertTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := c.ListTransactions(ctx, ports.TransactionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"later", "tie-b", "tie-a", "old"}
	if len(txs) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(txs))
	}
	for i, id := range want {
		if txs[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, txs[i].ID)
		}
	}

	incomes, _ := c.ListTransactions(ctx, ports.TransactionFilter{Type: core.Income})
	if len(incomes) != 1 || incomes[0].ID != "tie-b" {
		t.Fatalf("unexpected income filter result: %+v", incomes)
	}
}

func TestTransactionForeignKey(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Now().UTC()

	err := c.InsertTransaction(ctx, newTransaction("t1", "missing", core.NewDate(2024, 1, 1), core.Expense, at))
	if !ports.IsForeignKey(err) {
		t.Fatalf("expected foreign key error, got %v", err)
	}

	// Soft-deleted categories remain referenceable, like the relational FK.
	if err := c.InsertCategory(ctx, newCategory("c1", "Food", at)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SoftDeleteCategory(ctx, "c1", at); err != nil {
		t.Fatal(err)
	}
	if err := c.InsertTransaction(ctx, newTransaction("t1", "c1", core.NewDate(2024, 1, 1), core.Expense, at)); err != nil {
		t.Fatalf("insert against soft-deleted category: %v", err)
	}

	f := core.TransactionFields{Name: "x", Amount: decimal.NewFromInt(1), Currency: core.USD,
		Date: core.NewDate(2024, 1, 2), Type: core.Income, CategoryID: "nope"}
	if _, err := c.ReplaceTransaction(ctx, "t1", f, at); !ports.IsForeignKey(err) {
		t.Fatalf("expected foreign key error on replace, got %v", err)
	}
}

func TestReplaceAndDeleteTransaction(t *testing.T) {
	s := New()
	c := mustAcquire(t, s)
	ctx := context.Background()
	at := time.Now().UTC()

	_ = c.InsertCategory(ctx, newCategory("c1", "Food", at))
	tx := newTransaction("t1", "c1", core.NewDate(2024, 1, 1), core.Expense, at)
	if err := c.InsertTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	f := tx.Fields()
	f.Name = "renamed"
	f.Note = ""
	got, err := c.ReplaceTransaction(ctx, "t1", f, at.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" || !got.CreatedAt.Equal(at) || !got.UpdatedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("unexpected replace result: %+v", got)
	}

	if _, err := c.ReplaceTransaction(ctx, "missing", f, at); err != ports.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ok, err := c.DeleteTransaction(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, _ = c.DeleteTransaction(ctx, "t1")
	if ok {
		t.Fatal("second delete should report false")
	}
	if _, err := c.GetTransaction(ctx, "t1"); err != ports.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "budget.json")
	at := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	s, err := Open(Options{SnapshotPath: path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := mustAcquire(t, s)
	ctx := context.Background()
	if err := c.InsertCategory(ctx, newCategory("c1", "Food", at)); err != nil {
		t.Fatal(err)
	}
	if err := c.InsertTransaction(ctx, newTransaction("t1", "c1", core.NewDate(2024, 9, 2), core.Expense, at)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Acquire(ctx); err == nil {
		t.Fatal("expected acquire on closed store to fail")
	}

	reopened, err := Open(Options{SnapshotPath: path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c2 := mustAcquire(t, reopened)
	tx, err := c2.GetTransaction(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Date.String() != "2024-09-02" || !tx.Amount.Equal(decimal.NewFromInt(10)) || tx.CategoryID != "c1" {
		t.Fatalf("unexpected restored transaction: %+v", tx)
	}
	if _, err := c2.GetActiveCategory(ctx, "c1"); err != nil {
		t.Fatalf("category not restored: %v", err)
	}
}

func TestOpenSeedsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed_categories.txt")
	if err := os.WriteFile(seed, []byte("# defaults\nFood\nRent\nFood\n\nTravel\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(Options{SeedFile: seed}, nil)
	if err != nil {
		t.Fatal(err)
	}
	cats, err := mustAcquire(t, s).ListActiveCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 seeded categories, got %d", len(cats))
	}
	for i, name := range []string{"Food", "Rent", "Travel"} {
		if cats[i].Name != name || cats[i].Color != core.Palette()[i] {
			t.Fatalf("seed %d: got %+v", i, cats[i])
		}
	}
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(Options{SnapshotPath: path}, nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFailedSnapshotRollsBackWrite(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s := New()
	c := mustAcquire(t, s)
	if err := c.InsertCategory(ctx, newCategory("c1", "Food", at)); err != nil {
		t.Fatal(err)
	}
	if err := c.InsertTransaction(ctx, newTransaction("t1", "c1", core.NewDate(2024, 9, 2), core.Expense, at)); err != nil {
		t.Fatal(err)
	}

	// Snapshots now land under a regular file and cannot be written.
	s.snapshotPath = filepath.Join(blocker, "budget.json")

	if err := c.InsertCategory(ctx, newCategory("c2", "Rent", at)); !errors.Is(err, ports.ErrConnection) {
		t.Fatalf("InsertCategory() error = %v, want connection error", err)
	}
	if n, _ := c.CountActiveCategories(ctx); n != 1 {
		t.Errorf("active categories = %d after failed insert, want 1", n)
	}
	if deleted, err := c.SoftDeleteCategory(ctx, "c1", at); err == nil || deleted {
		t.Errorf("SoftDeleteCategory() = %v, %v; want failure", deleted, err)
	}
	if _, err := c.GetActiveCategory(ctx, "c1"); err != nil {
		t.Errorf("category c1 should still be active: %v", err)
	}
	if _, err := c.DeleteTransaction(ctx, "t1"); err == nil {
		t.Error("DeleteTransaction() should fail")
	}
	if _, err := c.GetTransaction(ctx, "t1"); err != nil {
		t.Errorf("transaction t1 should survive the failed delete: %v", err)
	}
}
