package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope.json"))
	st, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveCreatesDirectoryAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	r := New(path)

	st := store.DefaultState()
	st.User = core.User{Name: "Ada"}
	require.NoError(t, r.Save(ctx, &st))

	st.User.Name = "Grace"
	require.NoError(t, r.Save(ctx, &st))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.User.Name)
	assert.Len(t, got.Categories, 8)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := New(path).Load(context.Background())
	require.Error(t, err)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := store.DefaultState()
	path := filepath.Join(t.TempDir(), "data.json")
	require.ErrorIs(t, New(path).Save(ctx, &st), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
