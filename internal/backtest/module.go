package backtest

import (
	"context"
	"errors"

	"github.com/shandysiswandi/gobacktest/internal/backtest/inbound"
	"github.com/shandysiswandi/gobacktest/internal/backtest/store"
	"github.com/shandysiswandi/gobacktest/internal/backtest/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	Datasets  usecase.Datasets
}

func New(dep Dependency) error {
	if dep.Datasets == nil {
		return errors.New("backtest module requires the dataset module")
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store:    store.NewInMemoryStore(),
		Datasets: dep.Datasets,
		Runner:   dep.Goroutine,
		Clock:    nil,
		ID:       dep.ID,
		RootCtx:  dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetInt("dataset.max_upload_bytes"))

	return nil
}
