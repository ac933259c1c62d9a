package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
)

type mapConfig map[string]any

func (c mapConfig) GetInt(key string) int64 {
	switch v := c[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func (c mapConfig) GetBool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

func (c mapConfig) GetString(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c mapConfig) GetDuration(key string) time.Duration {
	v, _ := c[key].(time.Duration)
	return v
}

func (c mapConfig) GetArray(key string) []string {
	v, _ := c[key].([]string)
	return v
}

func (c mapConfig) Close() error { return nil }

func testConfig(t *testing.T) mapConfig {
	t.Helper()
	dir := t.TempDir()
	return mapConfig{
		"dataset.upload_dir":           filepath.Join(dir, "uploads"),
		"dataset.file_mode":            "0640",
		"dataset.max_upload_bytes":     1 << 20,
		"dataset.duplicate_policy":     "replace",
		"dataset.seed_sample":          true,
		"dataset.rehydrate":            true,
		"dataset.registry.driver":      "sqlite",
		"dataset.registry.sqlite_path": filepath.Join(dir, "db", "registry.db"),
		"dataset.event.buffer":         8,
		"dataset.event.workers":        1,
		"dataset.event.max_retries":    1,
		"dataset.event.base_backoff":   time.Millisecond,
	}
}

func TestNewSeedsAndRegistersRoutes(t *testing.T) {
	cfg := testConfig(t)
	router := pkgrouter.NewRouter(nil)

	uc, closer, err := New(Dependency{Config: cfg, Router: router, Context: context.Background()})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer func() { _ = closer(context.Background()) }()

	ds, err := uc.Get(context.Background(), usecase.SampleFilename)
	if err != nil {
		t.Fatalf("sample dataset: %v", err)
	}
	if ds.RowCount != 5 {
		t.Fatalf("sample rows = %d", ds.RowCount)
	}

	info, err := os.Stat(filepath.Join(cfg.GetString("dataset.upload_dir"), usecase.SampleFilename))
	if err != nil {
		t.Fatalf("stat sample: %v", err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("file mode = %v", info.Mode().Perm())
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
}

func TestNewRehydratesAfterRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg["dataset.registry.driver"] = "memory"
	cfg["dataset.seed_sample"] = false

	uploads := cfg.GetString("dataset.upload_dir")
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(uploads, "left.csv"), []byte("t,p\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	uc, closer, err := New(Dependency{Config: cfg, Router: pkgrouter.NewRouter(nil)})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer func() { _ = closer(context.Background()) }()

	if ok, _ := uc.Exists(context.Background(), "left.csv"); !ok {
		t.Fatal("existing file was not rehydrated")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := map[string]func(mapConfig){
		"policy":    func(c mapConfig) { c["dataset.duplicate_policy"] = "merge" },
		"driver":    func(c mapConfig) { c["dataset.registry.driver"] = "postgres" },
		"file mode": func(c mapConfig) { c["dataset.file_mode"] = "rw-r--r--" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			mutate(cfg)

			if _, _, err := New(Dependency{Config: cfg, Router: pkgrouter.NewRouter(nil)}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
