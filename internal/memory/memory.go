// Package memory is an in-process persistence backend. It keeps rows in
// insertion order behind a mutex and can mirror them to a JSON snapshot.
package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/ports"
)

const (
	tableCategories   = "categories"
	tableTransactions = "transactions"
)

var errClosed = errors.New("memory store is closed")

// Options configures a Store. Both paths are optional.
type Options struct {
	// SnapshotPath is loaded on start and rewritten after every write.
	SnapshotPath string
	// SeedFile lists category names, one per line, created when the store
	// starts empty.
	SeedFile string
}

type Store struct {
	mu           sync.Mutex
	categories   []core.Category
	transactions []core.Transaction
	closed       bool

	snapshotPath string
	logger       *slog.Logger
	now          func() time.Time
}

var _ ports.Backend = (*Store)(nil)

type snapshot struct {
	Categories   []core.Category    `json:"categories"`
	Transactions []core.Transaction `json:"transactions"`
}

// New returns an empty store with no snapshot.
func New() *Store {
	return &Store{logger: slog.Default(), now: func() time.Time { return time.Now().UTC() }}
}

// Open builds a store, restoring the snapshot when it exists and seeding
// categories when the store is still empty.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	s := New()
	if logger != nil {
		s.logger = logger
	}
	s.snapshotPath = opts.SnapshotPath

	if s.snapshotPath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	if opts.SeedFile != "" && len(s.categories) == 0 {
		names := readLines(opts.SeedFile)
		at := s.now().Truncate(time.Microsecond)
		for i, name := range names {
			s.categories = append(s.categories, core.Category{
				ID:        uuid.NewString(),
				Name:      name,
				Color:     core.ColorOrDefault(i),
				CreatedAt: at.Add(time.Duration(i) * time.Microsecond),
				UpdatedAt: at.Add(time.Duration(i) * time.Microsecond),
			})
		}
		if len(names) > 0 {
			s.logger.Info("Seeded categories", "count", len(names), "file", opts.SeedFile)
			if err := s.persistLocked(); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Acquire(ctx context.Context) (ports.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.NewBackendError("acquire", "", ports.KindConnection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ports.NewBackendError("acquire", "", ports.KindConnection, errClosed)
	}
	return &conn{s: s}, nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.NewBackendError("ping", "", ports.KindConnection, errClosed)
	}
	return nil
}

// Close writes a final snapshot and rejects further acquires.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.persistLocked()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.snapshotPath, err)
	}
	s.categories = snap.Categories
	s.transactions = snap.Transactions
	s.logger.Info("Snapshot restored",
		"path", s.snapshotPath,
		"categories", len(s.categories),
		"transactions", len(s.transactions))
	return nil
}

// persistLocked rewrites the snapshot atomically. Callers hold s.mu.
func (s *Store) persistLocked() error {
	if s.snapshotPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(snapshot{
		Categories:   nonNil(s.categories),
		Transactions: nonNil(s.transactions),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.snapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// readLines returns trimmed, deduplicated, non-comment lines in file order.
// A missing file yields nothing.
func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

// conn holds no state of its own; every call locks the store.
type conn struct {
	s *Store
}

func (c *conn) Release() {}

// write runs fn under the lock and persists on success. A failed
// snapshot write is reported as a connection error and the in-memory
// change is rolled back, so a failed write leaves no trace.
func (c *conn) write(op, table string, fn func() error) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.closed {
		return ports.NewBackendError(op, table, ports.KindConnection, errClosed)
	}
	cats, txs := slices.Clone(c.s.categories), slices.Clone(c.s.transactions)
	if err := fn(); err != nil {
		c.s.categories, c.s.transactions = cats, txs
		return err
	}
	if err := c.s.persistLocked(); err != nil {
		c.s.categories, c.s.transactions = cats, txs
		return ports.NewBackendError(op, table, ports.KindConnection, err)
	}
	return nil
}

func (c *conn) CountActiveCategories(context.Context) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	n := 0
	for _, cat := range c.s.categories {
		if cat.IsActive() {
			n++
		}
	}
	return n, nil
}

func (c *conn) ListActiveCategories(context.Context) ([]core.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []core.Category{}
	for _, cat := range c.s.categories {
		if cat.IsActive() {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *conn) GetActiveCategory(_ context.Context, id string) (core.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	i := c.s.categoryIndex(id)
	if i < 0 || !c.s.categories[i].IsActive() {
		return core.Category{}, ports.ErrNotFound
	}
	return c.s.categories[i], nil
}

func (c *conn) InsertCategory(_ context.Context, cat core.Category) error {
	return c.write("insert", tableCategories, func() error {
		if c.s.categoryIndex(cat.ID) >= 0 {
			return ports.NewBackendError("insert", tableCategories, ports.KindConstraint,
				fmt.Errorf("duplicate category id %s", cat.ID))
		}
		c.s.categories = append(c.s.categories, cat)
		return nil
	})
}

func (c *conn) UpdateCategoryName(_ context.Context, id, name string, at time.Time) (core.Category, error) {
	var out core.Category
	err := c.write("update", tableCategories, func() error {
		i := c.s.categoryIndex(id)
		if i < 0 || !c.s.categories[i].IsActive() {
			return ports.ErrNotFound
		}
		c.s.categories[i].Name = name
		c.s.categories[i].UpdatedAt = at
		out = c.s.categories[i]
		return nil
	})
	return out, err
}

func (c *conn) SoftDeleteCategory(_ context.Context, id string, at time.Time) (bool, error) {
	deleted := false
	err := c.write("soft_delete", tableCategories, func() error {
		i := c.s.categoryIndex(id)
		if i < 0 || !c.s.categories[i].IsActive() {
			return nil
		}
		deletedAt := at
		c.s.categories[i].DeletedAt = &deletedAt
		c.s.categories[i].UpdatedAt = at
		deleted = true
		return nil
	})
	return deleted, err
}

// ListTransactions orders by date and creation time, newest first. Rows
// with equal keys come back latest-inserted first.
func (c *conn) ListTransactions(_ context.Context, filter ports.TransactionFilter) ([]core.Transaction, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []core.Transaction{}
	for i := len(c.s.transactions) - 1; i >= 0; i-- {
		tx := c.s.transactions[i]
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (c *conn) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	i := c.s.transactionIndex(id)
	if i < 0 {
		return core.Transaction{}, ports.ErrNotFound
	}
	return c.s.transactions[i], nil
}

func (c *conn) InsertTransaction(_ context.Context, t core.Transaction) error {
	return c.write("insert", tableTransactions, func() error {
		if err := c.s.checkCategoryRef("insert", t.CategoryID); err != nil {
			return err
		}
		if c.s.transactionIndex(t.ID) >= 0 {
			return ports.NewBackendError("insert", tableTransactions, ports.KindConstraint,
				fmt.Errorf("duplicate transaction id %s", t.ID))
		}
		c.s.transactions = append(c.s.transactions, t)
		return nil
	})
}

func (c *conn) ReplaceTransaction(_ context.Context, id string, f core.TransactionFields, at time.Time) (core.Transaction, error) {
	var out core.Transaction
	err := c.write("update", tableTransactions, func() error {
		i := c.s.transactionIndex(id)
		if i < 0 {
			return ports.ErrNotFound
		}
		if err := c.s.checkCategoryRef("update", f.CategoryID); err != nil {
			return err
		}
		c.s.transactions[i].Apply(f)
		c.s.transactions[i].UpdatedAt = at
		out = c.s.transactions[i]
		return nil
	})
	return out, err
}

func (c *conn) DeleteTransaction(_ context.Context, id string) (bool, error) {
	deleted := false
	err := c.write("delete", tableTransactions, func() error {
		i := c.s.transactionIndex(id)
		if i < 0 {
			return nil
		}
		c.s.transactions = append(c.s.transactions[:i], c.s.transactions[i+1:]...)
		deleted = true
		return nil
	})
	return deleted, err
}

func (s *Store) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) transactionIndex(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// checkCategoryRef mirrors the relational foreign key: the row must exist,
// soft-deleted or not.
func (s *Store) checkCategoryRef(op, categoryID string) error {
	if s.categoryIndex(categoryID) >= 0 {
		return nil
	}
	return ports.NewBackendError(op, tableTransactions, ports.KindForeignKey,
		fmt.Errorf("category %s does not exist", categoryID))
}
