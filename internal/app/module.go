package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/gobacktest/internal/backtest"
	"github.com/shandysiswandi/gobacktest/internal/dataset"
	dsusecase "github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
)

func (a *App) initModules() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	var datasets *dsusecase.Usecase
	if a.config.GetBool("modules.dataset.enabled") {
		uc, closer, err := dataset.New(dataset.Dependency{
			Config:  a.config,
			Router:  a.router,
			Context: a.ctx,
			ID:      a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module dataset", "error", err)
			os.Exit(1)
		}
		a.closerFn["Dataset"] = closer
		datasets = uc
	}

	if a.config.GetBool("modules.backtest.enabled") {
		if datasets == nil {
			slog.Error("failed to init module backtest", "error", "modules.dataset.enabled must be true")
			os.Exit(1)
		}

		if err := backtest.New(backtest.Dependency{
			Config:    a.config,
			Goroutine: a.goroutine,
			Router:    a.router,
			Context:   a.ctx,
			ID:        a.uuid,
			Datasets:  datasets,
		}); err != nil {
			slog.Error("failed to init module backtest", "error", err)
			os.Exit(1)
		}
	}
}
