package usecase

import (
	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	dsusecase "github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
)

// RunInput names an existing dataset, or carries Upload to ingest first.
type RunInput struct {
	Filename   string
	ParamsJSON string
	Upload     *dsusecase.IngestInput
}

type RunResult struct {
	ID     string
	Status entity.Status
}
