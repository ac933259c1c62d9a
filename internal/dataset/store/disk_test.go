package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

func newDisk(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"), 0o644)
	require.NoError(t, err)
	return s
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewDiskStore(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		s := newDisk(t)
		info, err := os.Stat(s.Dir())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.True(t, filepath.IsAbs(s.Dir()))
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewDiskStore(dir, 0)
		require.NoError(t, err)
		_, err = NewDiskStore(dir, 0)
		require.NoError(t, err)
	})

	t.Run("empty dir", func(t *testing.T) {
		_, err := NewDiskStore("", 0)
		require.Error(t, err)
	})
}

func TestCheckFilename(t *testing.T) {
	bad := []string{
		"",
		".",
		"..",
		"../../etc/passwd",
		"../secret.csv",
		"a/b.csv",
		`a\b.csv`,
		"/etc/passwd.csv",
		"a..b.csv",
		"a\x00.csv",
		"line\nbreak.csv",
	}
	for _, name := range bad {
		assert.ErrorIs(t, CheckFilename(name), entity.ErrPathSecurity, "name %q", name)
	}

	good := []string{"a.csv", "ES 2024.csv", "data_1.CSV", ".hidden.csv", "prices-v2.csv"}
	for _, name := range good {
		assert.NoError(t, CheckFilename(name), "name %q", name)
	}
}

func TestSafePath(t *testing.T) {
	s := newDisk(t)

	path, err := s.SafePath("a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "a.csv"), path)

	_, err = s.SafePath("../../etc/passwd")
	assert.ErrorIs(t, err, entity.ErrPathSecurity)
}

func TestStageCommit(t *testing.T) {
	s := newDisk(t)
	ctx := context.Background()

	staged, err := s.Stage(ctx, "a.csv", []byte("t,p\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), staged.Size())

	_, err = os.Stat(filepath.Join(s.Dir(), "a.csv"))
	assert.True(t, os.IsNotExist(err), "final file must not exist before commit")

	require.NoError(t, staged.Commit())
	staged.Discard()

	data, err := s.ReadFile("a.csv")
	require.NoError(t, err)
	assert.Equal(t, "t,p\n1,2\n", string(data))
	assert.Equal(t, []string{"a.csv"}, dirEntries(t, s.Dir()))

	assert.ErrorIs(t, staged.Commit(), entity.ErrStorage)
}

func TestStageCommitReplaces(t *testing.T) {
	s := newDisk(t)
	ctx := context.Background()

	first, err := s.Stage(ctx, "a.csv", []byte("old"))
	require.NoError(t, err)
	require.NoError(t, first.Commit())

	second, err := s.Stage(ctx, "a.csv", []byte("new"))
	require.NoError(t, err)
	require.NoError(t, second.Commit())

	data, err := s.ReadFile("a.csv")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStageDiscard(t *testing.T) {
	s := newDisk(t)

	staged, err := s.Stage(context.Background(), "a.csv", []byte("t,p\n"))
	require.NoError(t, err)

	staged.Discard()
	staged.Discard()

	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestStageRejectsTraversal(t *testing.T) {
	s := newDisk(t)

	staged, err := s.Stage(context.Background(), "../../etc/passwd", []byte("x"))
	assert.ErrorIs(t, err, entity.ErrPathSecurity)
	assert.Nil(t, staged)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestStageCanceled(t *testing.T) {
	s := newDisk(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Stage(ctx, "a.csv", []byte("t,p\n"))
	assert.ErrorIs(t, err, entity.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestOpenRemove(t *testing.T) {
	s := newDisk(t)

	_, err := s.Open("missing.csv")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "a.csv"), []byte("x"), 0o644))

	rc, err := s.Open("a.csv")
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	require.NoError(t, s.Remove("a.csv"))
	require.NoError(t, s.Remove("a.csv"))
	assert.ErrorIs(t, s.Remove("../a.csv"), entity.ErrPathSecurity)
}

func TestScan(t *testing.T) {
	s := newDisk(t)
	dir := s.Dir()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	write := func(name string, mod time.Time) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("t,p\n"), 0o644))
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	write("b.csv", base)
	write("a.csv", base)
	write("c.CSV", base.Add(-time.Hour))
	write("notes.txt", base)
	write(".upload-123.tmp", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := s.Scan()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, "c.CSV,a.csv,b.csv", strings.Join(names, ","))
}
