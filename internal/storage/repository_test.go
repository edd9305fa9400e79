package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grosz/internal/log"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "views.db"), log.New(log.DefaultConfig()))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_SaveAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id1, err := repo.SaveView(ctx, "groceries 2024", "/transactions?category=3&date_from=2024-01-01")
	require.NoError(t, err)
	id2, err := repo.SaveView(ctx, "alior dashboard", "/dashboard?account=Alior")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	views, err := repo.ListViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]SavedView{}
	for _, v := range views {
		byName[v.Name] = v
		assert.False(t, v.CreatedAt.IsZero())
	}
	assert.Equal(t, "/transactions?category=3&date_from=2024-01-01", byName["groceries 2024"].Location)
	assert.Equal(t, "/dashboard?account=Alior", byName["alior dashboard"].Location)
}

func TestSQLiteRepository_DuplicateName(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	_, err := repo.SaveView(ctx, "dup", "/transactions")
	require.NoError(t, err)

	_, err = repo.SaveView(ctx, "dup", "/dashboard")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSQLiteRepository_DeleteView(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.SaveView(ctx, "temp", "/transactions?page=2")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteView(ctx, id))

	views, err := repo.ListViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)

	// Deleting a missing id is not an error.
	assert.NoError(t, repo.DeleteView(ctx, 999))
}

func TestSQLiteRepository_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.db")
	logger := log.New(log.DefaultConfig())

	first, err := NewSQLiteRepository(path, logger)
	require.NoError(t, err)
	_, err = first.SaveView(context.Background(), "kept", "/transactions")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening runs migrations again; existing data survives.
	second, err := NewSQLiteRepository(path, logger)
	require.NoError(t, err)
	defer second.Close()

	views, err := second.ListViews(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "kept", views[0].Name)
}
