package main

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLite points the commands at a fresh database file.
func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "data", "budget.db"))
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	t.Cleanup(func() {
		backendFlag = ""
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestCategoriesCommands(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No categories found")

	out, err = run(t, "categories", "add", "Groceries")
	require.NoError(t, err)
	assert.Contains(t, out, `Created category "Groceries"`)
	assert.Contains(t, out, "bg-blue-100 text-blue-800 border-blue-200")
	id := uuidRe.FindString(out)
	require.NotEmpty(t, id)

	out, err = run(t, "categories", "rename", id, "Food")
	require.NoError(t, err)
	assert.Contains(t, out, `"Food"`)

	out, err = run(t, "categories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, id)

	_, err = run(t, "categories", "delete", id)
	require.NoError(t, err)

	_, err = run(t, "categories", "delete", id)
	assert.EqualError(t, err, "category not found")

	_, err = run(t, "categories", "add", "   ")
	assert.EqualError(t, err, "Category name is required")
}

func TestTransactionsAndSummaryCommands(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "categories", "add", "Salary")
	require.NoError(t, err)
	catID := uuidRe.FindString(out)
	require.NotEmpty(t, catID)

	_, err = run(t, "transactions", "add",
		"--name", "October pay", "--amount", "1000", "--currency", "EUR",
		"--date", "2026-10-01", "--type", "income", "--category", catID)
	require.NoError(t, err)

	out, err = run(t, "transactions", "add",
		"--name", "Market", "--amount", "30.25", "--currency", "EUR",
		"--date", "2026-10-02", "--type", "expense", "--category", catID)
	require.NoError(t, err)
	assert.Contains(t, out, "€30.25")

	_, err = run(t, "transactions", "add", "--name", "Bad", "--amount", "abc", "--category", catID)
	assert.EqualError(t, err, "Valid amount is required")

	out, err = run(t, "transactions", "list", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Market")
	assert.NotContains(t, out, "October pay")

	_, err = run(t, "transactions", "list", "--type", "refund")
	assert.Error(t, err)

	out, err = run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "€969.75")
	assert.True(t, strings.Contains(out, "EUR"))
}

func TestMigrateCommands(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "No migrations applied")

	_, err = run(t, "migrate", "up")
	require.NoError(t, err)

	out, err = run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version 2")
}

func TestMigrateRejectsMemoryBackend(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "--backend", "memory", "migrate", "up")
	assert.ErrorContains(t, err, "no relational schema")
}

func TestEventsRequiresBroker(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "events")
	assert.ErrorContains(t, err, "AMQP_URL is required")
}
