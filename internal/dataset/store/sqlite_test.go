package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 2, 3, 4, 5, 6, 789, time.UTC)

func TestSQLiteRegistry(t *testing.T) {
	runRegistrySuite(t, func(t *testing.T) registry {
		r, err := NewSQLiteRegistry(context.Background(), filepath.Join(t.TempDir(), "registry.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = r.Close() })
		return r
	})
}

func TestSQLiteRegistrySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")

	r, err := NewSQLiteRegistry(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.Insert(ctx, dataset("b.csv", 2), nil))
	require.NoError(t, r.Insert(ctx, dataset("a.csv", 1), nil))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRegistry(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"b.csv", "a.csv"}, filenames(t, r))

	ds, err := r.Get(ctx, "b.csv")
	require.NoError(t, err)
	assert.Equal(t, dataset("b.csv", 2), ds)
}

func TestSQLiteRegistryInMemory(t *testing.T) {
	ctx := context.Background()

	r, err := NewSQLiteRegistry(ctx, ":memory:")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Insert(ctx, dataset("a.csv", 1), nil))
	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
