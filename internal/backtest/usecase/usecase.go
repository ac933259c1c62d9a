package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	dsentity "github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	dsusecase "github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkglog"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkguid"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

type Store interface {
	Create(ctx context.Context, bt entity.Backtest) error
	Update(ctx context.Context, id string, fn func(bt *entity.Backtest)) error
	Get(ctx context.Context, id string) (entity.Backtest, error)
	List(ctx context.Context, limit int) ([]entity.Backtest, error)
}

// Datasets is the read side of the dataset module plus ingestion for
// uploads that arrive with a backtest request.
type Datasets interface {
	Ingest(ctx context.Context, in dsusecase.IngestInput) (dsentity.Dataset, error)
	Exists(ctx context.Context, filename string) (bool, error)
	Content(ctx context.Context, filename string) (dsentity.Dataset, []byte, error)
}

type Runner interface {
	Go(ctx context.Context, name string, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store    Store
	Datasets Datasets
	Runner   Runner
	Clock    Clock
	ID       pkguid.StringID
	RootCtx  context.Context
}

type Usecase struct {
	store    Store
	datasets Datasets
	runner   Runner
	clock    Clock
	id       pkguid.StringID
	rootCtx  context.Context
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Usecase{
		store:    dep.Store,
		datasets: dep.Datasets,
		runner:   dep.Runner,
		clock:    clock,
		id:       dep.ID,
		rootCtx:  root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Run validates the request and schedules the backtest. The returned id can
// be polled with Get; the run itself happens in the background.
func (u *Usecase) Run(ctx context.Context, in RunInput) (RunResult, error) {
	if u.store == nil || u.datasets == nil || u.runner == nil || u.id == nil {
		return RunResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	params, err := ParseParams(in.ParamsJSON)
	if err != nil {
		return RunResult{}, err
	}

	filename := strings.TrimSpace(in.Filename)
	if in.Upload != nil {
		ds, err := u.datasets.Ingest(ctx, *in.Upload)
		if err != nil {
			return RunResult{}, err
		}
		filename = ds.Filename
	}

	if filename == "" {
		return RunResult{}, pkgerror.NewValidation("file or filename is required", pkgerror.CodeInvalidInput, errors.New("no dataset given"))
	}

	exists, err := u.datasets.Exists(ctx, filename)
	if err != nil {
		return RunResult{}, normalizeErr(err)
	}
	if !exists {
		return RunResult{}, pkgerror.NewBusiness(fmt.Sprintf("dataset %s not found", filename), pkgerror.CodeNotFound)
	}

	bt := entity.Backtest{
		ID:        u.id.Generate(),
		Filename:  filename,
		Params:    params,
		Status:    entity.StatusPending,
		CreatedAt: u.clock.Now(),
	}
	if err := u.store.Create(ctx, bt); err != nil {
		return RunResult{}, normalizeErr(err)
	}

	u.runner.Go(pkglog.CarryCorrelationID(u.rootCtx, ctx), "backtest "+bt.ID, func(ctx context.Context) error {
		if err := u.execute(ctx, bt.ID); err != nil {
			slog.ErrorContext(ctx, "backtest failed", "backtest_id", bt.ID, "filename", bt.Filename, "error", err)
			return err
		}
		return nil
	})

	return RunResult{ID: bt.ID, Status: bt.Status}, nil
}

func (u *Usecase) Get(ctx context.Context, id string) (entity.Backtest, error) {
	if strings.TrimSpace(id) == "" {
		return entity.Backtest{}, pkgerror.NewInvalidInput(errors.New("id is required"))
	}

	bt, err := u.store.Get(ctx, id)
	if err != nil {
		return entity.Backtest{}, mapStoreErr(err)
	}

	return bt, nil
}

// History lists recent backtests, newest first. A zero limit means
// DefaultHistoryLimit.
func (u *Usecase) History(ctx context.Context, limit int) ([]entity.Backtest, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, pkgerror.NewValidation(
			fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit),
			pkgerror.CodeInvalidInput,
			fmt.Errorf("limit %d out of range", limit),
		)
	}

	list, err := u.store.List(ctx, limit)
	if err != nil {
		return nil, normalizeErr(err)
	}

	return list, nil
}

func (u *Usecase) execute(ctx context.Context, id string) error {
	var bt entity.Backtest
	if err := u.store.Update(ctx, id, func(b *entity.Backtest) {
		b.Status = entity.StatusRunning
		bt = *b
	}); err != nil {
		return err
	}

	bars, err := u.loadBars(ctx, bt.Filename)
	if err != nil {
		backtestsTotal.WithLabelValues(string(entity.StatusFailed)).Inc()
		if upErr := u.store.Update(ctx, id, func(b *entity.Backtest) {
			b.Status = entity.StatusFailed
			b.Err = err.Error()
			b.CompletedAt = u.clock.Now()
		}); upErr != nil {
			return errors.Join(err, upErr)
		}
		return err
	}

	metrics, trades := simulate(bt.Params)

	if err := u.store.Update(ctx, id, func(b *entity.Backtest) {
		b.Status = entity.StatusCompleted
		b.Bars = bars
		b.Metrics = &metrics
		b.Trades = trades
		b.CompletedAt = u.clock.Now()
	}); err != nil {
		return err
	}
	backtestsTotal.WithLabelValues(string(entity.StatusCompleted)).Inc()

	slog.InfoContext(ctx, "backtest completed", "backtest_id", id, "filename", bt.Filename, "bars", bars)

	return nil
}

func (u *Usecase) loadBars(ctx context.Context, filename string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	_, data, err := u.datasets.Content(ctx, filename)
	if err != nil {
		return 0, fmt.Errorf("read dataset %s: %w", filename, err)
	}

	bars, err := dsusecase.ValidateCSV(filename, data)
	if err != nil {
		return 0, fmt.Errorf("parse dataset %s: %w", filename, err)
	}

	return bars, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("backtest not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
