package inbound

import (
	"context"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	"github.com/shandysiswandi/gobacktest/internal/backtest/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
)

type uc interface {
	Run(ctx context.Context, in usecase.RunInput) (usecase.RunResult, error)
	Get(ctx context.Context, id string) (entity.Backtest, error)
	History(ctx context.Context, limit int) ([]entity.Backtest, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUploadBytes int64) {
	end := &HTTPEndpoint{uc: uc, maxUploadBytes: maxUploadBytes}

	r.POST("/backtests", end.Run) // multipart: file | filename, params_json
	r.GET("/backtests/:id", end.Detail)

	r.GET("/api/historical-data", end.History) // ?limit=
	r.GET("/api/historical-data/:id", end.Detail)
}
