package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	"github.com/shandysiswandi/gobacktest/internal/dataset/event"
	"github.com/shandysiswandi/gobacktest/internal/dataset/inbound"
	"github.com/shandysiswandi/gobacktest/internal/dataset/store"
	"github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkguid"
)

type Dependency struct {
	Config  pkgconfig.Config
	Router  *pkgrouter.Router
	Context context.Context
	ID      pkguid.NumberID
}

type registry interface {
	usecase.Registry
	Close() error
}

// New wires the dataset module and registers its routes. The returned
// usecase is shared with modules that read datasets; the closer drains the
// event consumer and closes the registry.
func New(dep Dependency) (*usecase.Usecase, func(context.Context) error, error) {
	ctx := dep.Context
	if ctx == nil {
		ctx = context.Background()
	}

	policy, ok := entity.ParseDuplicatePolicy(dep.Config.GetString("dataset.duplicate_policy"))
	if !ok {
		return nil, nil, fmt.Errorf("unknown dataset.duplicate_policy %q", dep.Config.GetString("dataset.duplicate_policy"))
	}

	perm, err := parseFileMode(dep.Config.GetString("dataset.file_mode"))
	if err != nil {
		return nil, nil, err
	}

	disk, err := store.NewDiskStore(dep.Config.GetString("dataset.upload_dir"), perm)
	if err != nil {
		return nil, nil, err
	}

	reg, err := newRegistry(ctx, dep.Config)
	if err != nil {
		return nil, nil, err
	}

	if dep.ID == nil {
		dep.ID, err = pkguid.NewSnowflake()
		if err != nil {
			_ = reg.Close()
			return nil, nil, err
		}
	}

	bus := event.NewBus(int(dep.Config.GetInt("dataset.event.buffer")))
	consumer := event.NewConsumer(bus, event.AuditHandler{}, event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("dataset.event.workers")),
		MaxRetries:  int(dep.Config.GetInt("dataset.event.max_retries")),
		BaseBackoff: dep.Config.GetDuration("dataset.event.base_backoff"),
	})
	consumer.Start()

	uc := usecase.New(usecase.Dependency{
		Registry: reg,
		Files:    disk,
		Events:   bus,
		Clock:    nil,
		ID:       dep.ID,
		Policy:   policy,
	})

	closer := func(ctx context.Context) error {
		return errors.Join(consumer.Stop(ctx), reg.Close())
	}

	if dep.Config.GetBool("dataset.rehydrate") {
		if _, err := uc.Rehydrate(ctx); err != nil {
			_ = closer(ctx)
			return nil, nil, err
		}
	}

	if dep.Config.GetBool("dataset.seed_sample") {
		seeded, err := uc.Seed(ctx)
		if err != nil {
			_ = closer(ctx)
			return nil, nil, err
		}
		if seeded {
			slog.InfoContext(ctx, "sample dataset seeded", "filename", usecase.SampleFilename)
		}
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetInt("dataset.max_upload_bytes"))

	return uc, closer, nil
}

func newRegistry(ctx context.Context, cfg pkgconfig.Config) (registry, error) {
	switch driver := cfg.GetString("dataset.registry.driver"); driver {
	case "", "memory":
		return store.NewInMemoryRegistry(), nil
	case "sqlite":
		path := cfg.GetString("dataset.registry.sqlite_path")
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create registry directory: %w", err)
			}
		}
		return store.NewSQLiteRegistry(ctx, path)
	default:
		return nil, fmt.Errorf("unknown dataset.registry.driver %q", driver)
	}
}

func parseFileMode(v string) (os.FileMode, error) {
	if v == "" {
		return 0o644, nil
	}

	mode, err := strconv.ParseUint(v, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid dataset.file_mode %q: %w", v, err)
	}

	return os.FileMode(mode).Perm(), nil
}
