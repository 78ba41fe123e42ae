package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteLoadEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)

	_, ok, err := repo.UpdatedAt(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteSaveUpsertsSingleRecord(t *testing.T) {
	ctx := context.Background()
	repo, path := newTestRepo(t)

	st := store.DefaultState()
	st.Transactions = append(st.Transactions, core.Transaction{
		ID: "t1", Amount: decimal.RequireFromString("19.99"), Type: core.Expense,
		CategoryID: "shopping", Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, repo.Save(ctx, &st))

	st.InitialBalance = decimal.RequireFromString("500")
	require.NoError(t, repo.Save(ctx, &st))

	var rows int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_store`).Scan(&rows))
	assert.Equal(t, 1, rows)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.InitialBalance.Equal(decimal.RequireFromString("500")))
	require.Len(t, got.Transactions, 1)
	assert.True(t, got.Transactions[0].Amount.Equal(decimal.RequireFromString("19.99")))

	_, ok, err := repo.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// Reopening runs migrations again without error and sees the same data.
	require.NoError(t, repo.Close())
	again, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer again.Close()
	got, err = again.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 1)
}

func TestSQLiteBacksStore(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	s, err := store.Open(ctx, repo)
	require.NoError(t, err)
	s.SetInitialBalance(ctx, decimal.RequireFromString("100"))
	s.AddTransaction(ctx, core.NewTransaction{
		Amount: decimal.RequireFromString("40"), Type: core.Expense,
		CategoryID: "bills", Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	reopened, err := store.Open(ctx, repo)
	require.NoError(t, err)
	assert.True(t, reopened.CurrentBalance().Equal(decimal.RequireFromString("60")))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	_, path := newTestRepo(t)

	version, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	version, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
