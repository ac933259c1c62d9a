package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	"github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
)

const tempPattern = ".upload-*.tmp"

// DiskStore keeps one regular file per dataset directly under a single
// upload directory, named exactly as the (validated) client filename.
type DiskStore struct {
	dir  string
	perm os.FileMode
}

// NewDiskStore creates dir if it is missing and returns a store rooted there.
// It is safe to call on every startup.
func NewDiskStore(dir string, perm os.FileMode) (*DiskStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if perm == 0 {
		perm = 0o644
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create upload directory: %w", entity.ErrStorage, err)
	}

	return &DiskStore{dir: abs, perm: perm}, nil
}

// Dir returns the absolute upload directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// CheckFilename rejects anything that is not a plain file name inside the
// upload directory: separators, "..", absolute paths, NUL and control bytes.
func CheckFilename(filename string) error {
	switch {
	case filename == "", filename == ".", filename == "..":
		return fmt.Errorf("%w: %q", entity.ErrPathSecurity, filename)
	case strings.ContainsAny(filename, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", entity.ErrPathSecurity, filename)
	case strings.Contains(filename, ".."):
		return fmt.Errorf("%w: %q contains a parent reference", entity.ErrPathSecurity, filename)
	case strings.IndexFunc(filename, func(r rune) bool { return r < 0x20 || r == 0x7f }) >= 0:
		return fmt.Errorf("%w: %q contains control characters", entity.ErrPathSecurity, filename)
	case filepath.IsAbs(filename), !filepath.IsLocal(filename), filepath.Base(filename) != filename:
		return fmt.Errorf("%w: %q is not a local file name", entity.ErrPathSecurity, filename)
	}
	return nil
}

// SafePath validates filename and joins it onto the upload directory.
func (s *DiskStore) SafePath(filename string) (string, error) {
	if err := CheckFilename(filename); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filename)
	if filepath.Dir(path) != s.dir {
		return "", fmt.Errorf("%w: %q escapes the upload directory", entity.ErrPathSecurity, filename)
	}

	return path, nil
}

// StagedFile is a fully written temp file waiting to be published under its
// final name. Exactly one of Commit or Discard takes effect.
type StagedFile struct {
	mu       sync.Mutex
	tmpPath  string
	path     string
	size     int64
	finished bool
}

// Size is the number of bytes persisted.
func (f *StagedFile) Size() int64 {
	return f.size
}

// Commit atomically renames the temp file onto the final path, replacing any
// previous file of the same name.
func (f *StagedFile) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.finished {
		return fmt.Errorf("%w: staged file already finished", entity.ErrStorage)
	}

	if err := os.Rename(f.tmpPath, f.path); err != nil {
		return fmt.Errorf("%w: publish %s: %w", entity.ErrStorage, filepath.Base(f.path), err)
	}

	f.finished = true
	return nil
}

// Discard removes the temp file. It is a no-op after Commit.
func (f *StagedFile) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.finished {
		return
	}

	_ = os.Remove(f.tmpPath)
	f.finished = true
}

// Stage writes content to a temp file next to its final location. Readers of
// the final path never observe a partial file; the temp file is removed on
// every failure path, including cancellation of ctx.
func (s *DiskStore) Stage(ctx context.Context, filename string, content []byte) (usecase.Staged, error) {
	path, err := s.SafePath(filename)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", entity.ErrStorage, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("%w: write: %w", entity.ErrStorage, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("%w: sync: %w", entity.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close: %w", entity.ErrStorage, err)
	}

	if err := os.Chmod(tmpPath, s.perm); err != nil {
		return nil, fmt.Errorf("%w: chmod: %w", entity.ErrStorage, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorage, err)
	}

	success = true
	return &StagedFile{tmpPath: tmpPath, path: path, size: int64(len(content))}, nil
}

// Open returns a reader over the stored file.
func (s *DiskStore) Open(filename string) (io.ReadCloser, error) {
	path, err := s.SafePath(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", entity.ErrStorage, err)
	}

	return f, nil
}

// ReadFile returns the stored bytes of filename.
func (s *DiskStore) ReadFile(filename string) ([]byte, error) {
	rc, err := s.Open(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", entity.ErrStorage, err)
	}

	return data, nil
}

// Remove deletes the stored file. A missing file is not an error.
func (s *DiskStore) Remove(filename string) error {
	path, err := s.SafePath(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove: %w", entity.ErrStorage, err)
	}

	return nil
}

// Scan lists the regular .csv files in the upload directory, sorted by
// modification time then name. Temp files and anything with an unsafe name
// are skipped.
func (s *DiskStore) Scan() ([]usecase.StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %w", entity.ErrStorage, err)
	}

	files := make([]usecase.StoredFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".upload-") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".csv") || CheckFilename(name) != nil {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, usecase.StoredFile{Name: name, Info: info})
	}

	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := files[i].Info.ModTime(), files[j].Info.ModTime()
		if ti.Equal(tj) {
			return files[i].Name < files[j].Name
		}
		return ti.Before(tj)
	})

	return files, nil
}
