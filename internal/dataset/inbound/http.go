package inbound

import (
	"context"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	"github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
)

type uc interface {
	Ingest(ctx context.Context, in usecase.IngestInput) (entity.Dataset, error)
	List(ctx context.Context) ([]entity.Dataset, error)
	Get(ctx context.Context, filename string) (entity.Dataset, error)
	Delete(ctx context.Context, filename string) error
	Count(ctx context.Context) (int, error)
	UploadDir() string
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUploadBytes int64) {
	end := &HTTPEndpoint{uc: uc, maxUploadBytes: maxUploadBytes}

	r.POST("/upload", end.Upload) // multipart: file, symbol

	r.GET("/api/files", end.ListFiles)
	r.GET("/api/files/:filename", end.GetFile)
	r.DELETE("/api/files/:filename", end.DeleteFile)

	r.GET("/health", end.Health)
}
