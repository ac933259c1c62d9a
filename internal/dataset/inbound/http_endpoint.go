package inbound

import (
	"context"
	"errors"
	"net/http"

	"github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
)

const serviceName = "Trading Backtesting API"

//nolint:gochecknoglobals // advertised route list
var endpoints = []string{
	"/",
	"/upload",
	"/api/files",
	"/backtests",
	"/api/historical-data",
	"/health",
	"/metrics",
}

type HTTPEndpoint struct {
	uc             uc
	maxUploadBytes int64
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	in, err := ReadUpload(r, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	ds, err := h.uc.Ingest(ctx, in)
	if err != nil {
		return nil, MapError(err)
	}

	return UploadResponse{Dataset: toHTTPDataset(ds)}, nil
}

func (h *HTTPEndpoint) ListFiles(ctx context.Context, r *http.Request) (any, error) {
	list, err := h.uc.List(ctx)
	if err != nil {
		return nil, MapError(err)
	}

	resp := make(ListFilesResponse, 0, len(list))
	for _, ds := range list {
		resp = append(resp, toHTTPDataset(ds))
	}

	return resp, nil
}

func (h *HTTPEndpoint) GetFile(ctx context.Context, r *http.Request) (any, error) {
	ds, err := h.uc.Get(ctx, pkgrouter.GetParam(ctx, "filename"))
	if err != nil {
		return nil, MapError(err)
	}

	return toHTTPDataset(ds), nil
}

func (h *HTTPEndpoint) DeleteFile(ctx context.Context, r *http.Request) (any, error) {
	filename := pkgrouter.GetParam(ctx, "filename")
	if err := h.uc.Delete(ctx, filename); err != nil {
		return nil, MapError(err)
	}

	return DeleteFileResponse{Filename: filename}, nil
}

func (h *HTTPEndpoint) Health(ctx context.Context, r *http.Request) (any, error) {
	count, err := h.uc.Count(ctx)
	if err != nil {
		return nil, MapError(err)
	}

	return HealthResponse{
		Status:             "healthy",
		Service:            serviceName,
		Version:            pkgrouter.Version,
		Endpoints:          endpoints,
		DataDirectory:      h.uc.UploadDir(),
		UploadedFilesCount: count,
	}, nil
}

// ReadUpload extracts the "file" part and optional "symbol" field of a
// multipart upload. The body is capped at maxBytes.
func ReadUpload(r *http.Request, maxBytes int64) (usecase.IngestInput, error) {
	form, err := pkgrouter.ReadMultipart(r, maxBytes)
	if errors.Is(err, pkgrouter.ErrNotMultipart) {
		return usecase.IngestInput{}, pkgerror.NewValidation("multipart/form-data body is required", pkgerror.CodeInvalidFormat, err)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return usecase.IngestInput{}, MapError(err)
		}
		return usecase.IngestInput{}, pkgerror.NewValidation("malformed multipart body", pkgerror.CodeInvalidFormat, err)
	}

	file, ok := form.File("file")
	if !ok {
		return usecase.IngestInput{}, pkgerror.NewValidation("file is required", pkgerror.CodeInvalidInput, errors.New("missing file part"))
	}

	return usecase.IngestInput{
		Filename: file.Filename,
		Symbol:   form.Value("symbol"),
		Content:  file.Content,
	}, nil
}
