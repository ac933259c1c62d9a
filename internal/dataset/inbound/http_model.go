package inbound

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

type Dataset struct {
	Filename   string        `json:"filename"`
	Symbol     string        `json:"symbol"`
	UploadedAt string        `json:"uploaded_at"`
	RowCount   int64         `json:"row_count"`
	SizeBytes  int64         `json:"size_bytes"`
	SizeMB     float64       `json:"size_mb"`
	Status     entity.Status `json:"status"`
}

func toHTTPDataset(ds entity.Dataset) Dataset {
	sizeMB, _ := decimal.NewFromFloat(ds.SizeMB()).Round(2).Float64()

	return Dataset{
		Filename:   ds.Filename,
		Symbol:     ds.Symbol,
		UploadedAt: ds.UploadedAt.UTC().Format(time.RFC3339),
		RowCount:   ds.RowCount,
		SizeBytes:  ds.SizeBytes,
		SizeMB:     sizeMB,
		Status:     ds.Status,
	}
}

type UploadResponse struct {
	Dataset
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

func (r UploadResponse) Message() string {
	return fmt.Sprintf("File %s uploaded successfully", r.Filename)
}

type ListFilesResponse []Dataset

func (r ListFilesResponse) Meta() map[string]any {
	return map[string]any{"total": len(r)}
}

type DeleteFileResponse struct {
	Filename string `json:"filename"`
}

func (r DeleteFileResponse) Message() string {
	return fmt.Sprintf("File %s deleted", r.Filename)
}

type HealthResponse struct {
	Status             string   `json:"status"`
	Service            string   `json:"service"`
	Version            string   `json:"version"`
	Endpoints          []string `json:"endpoints"`
	DataDirectory      string   `json:"data_directory"`
	UploadedFilesCount int      `json:"uploaded_files_count"`
}
