package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkguid"
)

const rehydrateParallelism = 8

type Registry interface {
	Insert(ctx context.Context, ds entity.Dataset, publish func() error) error
	Upsert(ctx context.Context, ds entity.Dataset, publish func() error) (bool, error)
	List(ctx context.Context) ([]entity.Dataset, error)
	Get(ctx context.Context, filename string) (entity.Dataset, error)
	Exists(ctx context.Context, filename string) (bool, error)
	UpdateStatus(ctx context.Context, filename string, status entity.Status) error
	Delete(ctx context.Context, filename string, unpublish func() error) error
	Count(ctx context.Context) (int, error)
}

// Staged is written content that is not yet visible under its final name.
type Staged interface {
	Size() int64
	Commit() error
	Discard()
}

type FileStore interface {
	Dir() string
	SafePath(filename string) (string, error)
	Stage(ctx context.Context, filename string, content []byte) (Staged, error)
	Open(filename string) (io.ReadCloser, error)
	ReadFile(filename string) ([]byte, error)
	Remove(filename string) error
	Scan() ([]StoredFile, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.DatasetEvent) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Registry Registry
	Files    FileStore
	Events   EventPublisher
	Clock    Clock
	ID       pkguid.NumberID
	Policy   entity.DuplicatePolicy
}

type Usecase struct {
	registry Registry
	files    FileStore
	events   EventPublisher
	clock    Clock
	id       pkguid.NumberID
	policy   entity.DuplicatePolicy
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	policy := dep.Policy
	if policy == "" {
		policy = entity.DuplicateReplace
	}

	return &Usecase{
		registry: dep.Registry,
		files:    dep.Files,
		events:   dep.Events,
		clock:    clock,
		id:       dep.ID,
		policy:   policy,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// UploadDir is the directory holding every stored dataset file.
func (u *Usecase) UploadDir() string {
	return u.files.Dir()
}

// Ingest validates, stores and registers one uploaded file. On any failure
// nothing new is visible: no final file and no registry entry.
func (u *Usecase) Ingest(ctx context.Context, in IngestInput) (ds entity.Dataset, err error) {
	start := time.Now()
	defer func() { observeIngest(start, ds, err) }()

	if _, err := u.files.SafePath(in.Filename); err != nil {
		return entity.Dataset{}, entity.NewIngestionError(entity.StageValidation, in.Filename, err)
	}

	rows, err := ValidateCSV(in.Filename, in.Content)
	if err != nil {
		return entity.Dataset{}, entity.NewIngestionError(entity.StageValidation, in.Filename, err)
	}

	if u.policy == entity.DuplicateReject {
		exists, err := u.registry.Exists(ctx, in.Filename)
		if err != nil {
			return entity.Dataset{}, entity.NewIngestionError(entity.StageRegistry, in.Filename, err)
		}
		if exists {
			return entity.Dataset{}, entity.NewIngestionError(entity.StageRegistry, in.Filename, entity.ErrDuplicateFilename)
		}
	}

	staged, err := u.files.Stage(ctx, in.Filename, in.Content)
	if err != nil {
		return entity.Dataset{}, entity.NewIngestionError(stageOf(err), in.Filename, err)
	}
	defer staged.Discard()

	ds = entity.Dataset{
		Filename:   in.Filename,
		Symbol:     entity.NormalizeSymbol(in.Symbol),
		UploadedAt: u.clock.Now(),
		RowCount:   rows,
		SizeBytes:  staged.Size(),
		Status:     entity.StatusUploaded,
	}

	var commitErr error
	publish := func() error {
		commitErr = staged.Commit()
		return commitErr
	}

	replaced := false
	switch u.policy {
	case entity.DuplicateReject:
		err = u.registry.Insert(ctx, ds, publish)
	default:
		replaced, err = u.registry.Upsert(ctx, ds, publish)
	}
	if err != nil {
		stage := entity.StageRegistry
		if commitErr != nil {
			stage = entity.StageStorage
		}
		return entity.Dataset{}, entity.NewIngestionError(stage, in.Filename, err)
	}

	eventType := entity.EventIngested
	if replaced {
		eventType = entity.EventReplaced
	}
	u.publish(ctx, eventType, ds)

	slog.InfoContext(ctx, "dataset ingested",
		"filename", ds.Filename,
		"symbol", ds.Symbol,
		"row_count", ds.RowCount,
		"size_bytes", ds.SizeBytes,
		"replaced", replaced,
	)

	return ds, nil
}

func (u *Usecase) List(ctx context.Context) ([]entity.Dataset, error) {
	return u.registry.List(ctx)
}

func (u *Usecase) Get(ctx context.Context, filename string) (entity.Dataset, error) {
	return u.registry.Get(ctx, filename)
}

func (u *Usecase) Exists(ctx context.Context, filename string) (bool, error) {
	return u.registry.Exists(ctx, filename)
}

func (u *Usecase) Count(ctx context.Context) (int, error) {
	return u.registry.Count(ctx)
}

func (u *Usecase) UpdateStatus(ctx context.Context, filename string, status entity.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown dataset status %q", status)
	}
	return u.registry.UpdateStatus(ctx, filename, status)
}

// Content returns the record and stored bytes of a registered dataset.
func (u *Usecase) Content(ctx context.Context, filename string) (entity.Dataset, []byte, error) {
	ds, err := u.registry.Get(ctx, filename)
	if err != nil {
		return entity.Dataset{}, nil, err
	}

	data, err := u.files.ReadFile(filename)
	if err != nil {
		return entity.Dataset{}, nil, err
	}

	return ds, data, nil
}

// Delete removes the stored file and its registry entry together.
func (u *Usecase) Delete(ctx context.Context, filename string) error {
	if _, err := u.files.SafePath(filename); err != nil {
		return err
	}

	ds, err := u.registry.Get(ctx, filename)
	if err != nil {
		return err
	}

	if err := u.registry.Delete(ctx, filename, func() error {
		return u.files.Remove(filename)
	}); err != nil {
		return err
	}

	u.publish(ctx, entity.EventDeleted, ds)
	slog.InfoContext(ctx, "dataset deleted", "filename", filename)

	return nil
}

// Seed ingests the bundled sample dataset when the registry is empty.
// It reports whether anything was created.
func (u *Usecase) Seed(ctx context.Context) (bool, error) {
	n, err := u.registry.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if _, err := u.Ingest(ctx, IngestInput{
		Filename: SampleFilename,
		Symbol:   SampleSymbol,
		Content:  []byte(sampleCSV),
	}); err != nil {
		return false, fmt.Errorf("seed sample dataset: %w", err)
	}

	return true, nil
}

// Rehydrate registers valid CSV files already on disk that the registry does
// not know, and drops entries whose file no longer exists. Files are read and
// validated in parallel but registered in scan order.
func (u *Usecase) Rehydrate(ctx context.Context) (RehydrateResult, error) {
	var result RehydrateResult

	files, err := u.files.Scan()
	if err != nil {
		return result, err
	}

	onDisk := make(map[string]struct{}, len(files))
	for _, f := range files {
		onDisk[f.Name] = struct{}{}
	}

	candidates := make([]entity.Dataset, len(files))
	valid := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rehydrateParallelism)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			exists, err := u.registry.Exists(gctx, f.Name)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}

			data, err := u.files.ReadFile(f.Name)
			if err != nil {
				return err
			}

			rows, err := ValidateCSV(f.Name, data)
			if err != nil {
				slog.WarnContext(gctx, "skipping invalid dataset file", "filename", f.Name, "error", err)
				return nil
			}

			candidates[i] = entity.Dataset{
				Filename:   f.Name,
				Symbol:     symbolFromContent(data),
				UploadedAt: f.Info.ModTime(),
				RowCount:   rows,
				SizeBytes:  int64(len(data)),
				Status:     entity.StatusUploaded,
			}
			valid[i] = true

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("rehydrate: %w", err)
	}

	for i, f := range files {
		if !valid[i] {
			continue
		}
		err := u.registry.Insert(ctx, candidates[i], nil)
		if errors.Is(err, entity.ErrDuplicateFilename) {
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("rehydrate %s: %w", f.Name, err)
		}
		result.Registered = append(result.Registered, f.Name)
	}

	known, err := u.registry.List(ctx)
	if err != nil {
		return result, err
	}
	for _, ds := range known {
		if _, ok := onDisk[ds.Filename]; ok {
			continue
		}
		if err := u.registry.Delete(ctx, ds.Filename, nil); err != nil && !errors.Is(err, entity.ErrNotFound) {
			return result, fmt.Errorf("drop %s: %w", ds.Filename, err)
		}
		result.Dropped = append(result.Dropped, ds.Filename)
	}

	slog.InfoContext(ctx, "datasets rehydrated",
		"registered", len(result.Registered),
		"skipped", len(result.Skipped),
		"dropped", len(result.Dropped),
	)

	return result, nil
}

func (u *Usecase) publish(ctx context.Context, eventType entity.EventType, ds entity.Dataset) {
	if u.events == nil {
		return
	}

	event := entity.DatasetEvent{Type: eventType, Dataset: ds}
	if u.id != nil {
		event.EventID = u.id.Generate()
	}

	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish dataset event",
			"filename", ds.Filename,
			"event_id", event.EventID,
			"error", err,
		)
	}
}

func stageOf(err error) entity.Stage {
	if errors.Is(err, entity.ErrPathSecurity) {
		return entity.StageValidation
	}
	return entity.StageStorage
}

// symbolFromContent picks the symbol column of the first data row when the
// header has one. Files written by Ingest carry no symbol, so this falls back
// to the default.
func symbolFromContent(data []byte) string {
	lines := bytes.SplitN(bytes.TrimPrefix(data, utf8BOM), []byte("\n"), 3)
	if len(lines) < 2 {
		return entity.DefaultSymbol
	}

	header := bytes.Split(bytes.TrimSpace(lines[0]), []byte(","))
	row := bytes.Split(bytes.TrimSpace(lines[1]), []byte(","))
	for i, col := range header {
		if !bytes.EqualFold(bytes.TrimSpace(col), []byte("symbol")) || i >= len(row) {
			continue
		}
		return entity.NormalizeSymbol(string(bytes.TrimSpace(row[i])))
	}

	return entity.DefaultSymbol
}
