package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

// registry is what both registry implementations share; the same suite runs
// against each.
type registry interface {
	Insert(ctx context.Context, ds entity.Dataset, publish func() error) error
	Upsert(ctx context.Context, ds entity.Dataset, publish func() error) (bool, error)
	List(ctx context.Context) ([]entity.Dataset, error)
	Get(ctx context.Context, filename string) (entity.Dataset, error)
	Exists(ctx context.Context, filename string) (bool, error)
	UpdateStatus(ctx context.Context, filename string, status entity.Status) error
	Delete(ctx context.Context, filename string, unpublish func() error) error
	Count(ctx context.Context) (int, error)
	Close() error
}

func dataset(name string, rows int64) entity.Dataset {
	return entity.Dataset{
		Filename:   name,
		Symbol:     entity.DefaultSymbol,
		UploadedAt: fixedTime,
		RowCount:   rows,
		SizeBytes:  rows * 10,
		Status:     entity.StatusUploaded,
	}
}

func filenames(t *testing.T, r registry) []string {
	t.Helper()
	list, err := r.List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, ds := range list {
		out = append(out, ds.Filename)
	}
	return out
}

func runRegistrySuite(t *testing.T, newRegistry func(t *testing.T) registry) {
	ctx := context.Background()

	t.Run("insert keeps order", func(t *testing.T) {
		r := newRegistry(t)
		for _, name := range []string{"b.csv", "a.csv", "c.csv"} {
			require.NoError(t, r.Insert(ctx, dataset(name, 1), nil))
		}
		assert.Equal(t, []string{"b.csv", "a.csv", "c.csv"}, filenames(t, r))

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("insert rejects duplicate without publishing", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Insert(ctx, dataset("a.csv", 1), nil))

		called := false
		err := r.Insert(ctx, dataset("a.csv", 2), func() error { called = true; return nil })
		assert.ErrorIs(t, err, entity.ErrDuplicateFilename)
		assert.False(t, called)

		ds, err := r.Get(ctx, "a.csv")
		require.NoError(t, err)
		assert.Equal(t, int64(1), ds.RowCount)
	})

	t.Run("upsert replaces in place", func(t *testing.T) {
		r := newRegistry(t)
		replaced, err := r.Upsert(ctx, dataset("a.csv", 1), nil)
		require.NoError(t, err)
		assert.False(t, replaced)
		_, err = r.Upsert(ctx, dataset("b.csv", 1), nil)
		require.NoError(t, err)

		replaced, err = r.Upsert(ctx, dataset("a.csv", 7), nil)
		require.NoError(t, err)
		assert.True(t, replaced)

		assert.Equal(t, []string{"a.csv", "b.csv"}, filenames(t, r))
		ds, err := r.Get(ctx, "a.csv")
		require.NoError(t, err)
		assert.Equal(t, int64(7), ds.RowCount)
		assert.True(t, ds.UploadedAt.Equal(fixedTime))
	})

	t.Run("failed publish records nothing", func(t *testing.T) {
		r := newRegistry(t)
		boom := errors.New("rename failed")

		err := r.Insert(ctx, dataset("a.csv", 1), func() error { return boom })
		assert.ErrorIs(t, err, boom)
		_, err = r.Upsert(ctx, dataset("b.csv", 1), func() error { return boom })
		assert.ErrorIs(t, err, boom)

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("get and exists", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Insert(ctx, dataset("a.csv", 3), nil))

		ok, err := r.Exists(ctx, "a.csv")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = r.Exists(ctx, "missing.csv")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = r.Get(ctx, "missing.csv")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Insert(ctx, dataset("a.csv", 3), nil))

		require.NoError(t, r.UpdateStatus(ctx, "a.csv", entity.StatusProcessing))
		ds, err := r.Get(ctx, "a.csv")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusProcessing, ds.Status)

		assert.ErrorIs(t, r.UpdateStatus(ctx, "missing.csv", entity.StatusFailed), entity.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRegistry(t)
		for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
			require.NoError(t, r.Insert(ctx, dataset(name, 1), nil))
		}

		require.NoError(t, r.Delete(ctx, "b.csv", nil))
		assert.Equal(t, []string{"a.csv", "c.csv"}, filenames(t, r))

		ds, err := r.Get(ctx, "c.csv")
		require.NoError(t, err)
		assert.Equal(t, "c.csv", ds.Filename)

		assert.ErrorIs(t, r.Delete(ctx, "b.csv", nil), entity.ErrNotFound)

		boom := errors.New("remove failed")
		assert.ErrorIs(t, r.Delete(ctx, "a.csv", func() error { return boom }), boom)
		ok, err := r.Exists(ctx, "a.csv")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list returns a copy", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Insert(ctx, dataset("a.csv", 1), nil))

		list, err := r.List(ctx)
		require.NoError(t, err)
		list[0].Filename = "mutated.csv"

		assert.Equal(t, []string{"a.csv"}, filenames(t, r))
	})

	t.Run("concurrent upserts", func(t *testing.T) {
		r := newRegistry(t)

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Upsert(ctx, dataset(fmt.Sprintf("f%03d.csv", i), int64(i)), nil)
				assert.NoError(t, err)
				_, _ = r.List(ctx)
			}()
		}
		wg.Wait()

		names := filenames(t, r)
		assert.Len(t, names, 100)
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			assert.False(t, seen[n], "duplicate %s", n)
			seen[n] = true
		}
	})
}

func TestInMemoryRegistry(t *testing.T) {
	runRegistrySuite(t, func(t *testing.T) registry {
		return NewInMemoryRegistry()
	})
}
