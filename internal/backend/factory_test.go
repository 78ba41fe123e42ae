package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataFilePath: "/tmp/x.json", AsyncSave: true})
	require.NoError(t, err)
	assert.Equal(t, FileBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.json", cfg.DataFilePath)
	assert.True(t, cfg.AsyncSave)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: FileBackend}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: "redis"}.Validate())
	assert.Equal(t, []string{"sqlite", "file", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackendRoundTrips(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "fintrack.db")}},
		{"file", Config{Type: FileBackend, DataFilePath: filepath.Join(dir, "fintrack.json")}},
		{"file async", Config{Type: FileBackend, DataFilePath: filepath.Join(dir, "async.json"), AsyncSave: true}},
		{"sqlite async", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "async.db"), AsyncSave: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.cfg)
			require.NoError(t, err)
			assert.Nil(t, res.Notifier)
			assert.Empty(t, res.StoreOptions())

			s, err := store.Open(ctx, res.Repository, res.StoreOptions()...)
			require.NoError(t, err)
			s.SetInitialBalance(ctx, decimal.NewFromInt(100))
			s.AddTransaction(ctx, core.NewTransaction{Amount: decimal.NewFromInt(25), Type: core.Expense, CategoryID: "food"})
			require.NoError(t, res.Cleanup(ctx))

			cfg := tt.cfg
			cfg.AsyncSave = false
			again, err := NewFactory(nil).CreateBackend(ctx, cfg)
			require.NoError(t, err)
			defer again.Cleanup(ctx)

			reopened, err := store.Open(ctx, again.Repository)
			require.NoError(t, err)
			assert.True(t, reopened.CurrentBalance().Equal(decimal.NewFromInt(75)))
		})
	}
}

func TestCreateBackendMemory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	st, err := res.Repository.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.NoError(t, res.Cleanup(context.Background()))
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}
