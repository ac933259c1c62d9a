package inbound

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gobacktest/internal/backtest/usecase"
	dsinbound "github.com/shandysiswandi/gobacktest/internal/dataset/inbound"
	dsusecase "github.com/shandysiswandi/gobacktest/internal/dataset/usecase"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc             uc
	maxUploadBytes int64
}

func (h *HTTPEndpoint) Run(ctx context.Context, r *http.Request) (any, error) {
	form, err := pkgrouter.ReadMultipart(r, h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, pkgrouter.ErrNotMultipart) {
			return nil, pkgerror.NewValidation("multipart/form-data body is required", pkgerror.CodeInvalidFormat, err)
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dsinbound.MapError(err)
		}
		return nil, pkgerror.NewValidation("malformed multipart body", pkgerror.CodeInvalidFormat, err)
	}

	in := usecase.RunInput{
		Filename:   form.Value("filename"),
		ParamsJSON: form.Value("params_json"),
	}
	if file, ok := form.File("file"); ok {
		in.Upload = &dsusecase.IngestInput{
			Filename: file.Filename,
			Symbol:   form.Value("symbol"),
			Content:  file.Content,
		}
	}

	result, err := h.uc.Run(ctx, in)
	if err != nil {
		return nil, dsinbound.MapError(err)
	}

	return RunResponse{ID: result.ID, Status: result.Status}, nil
}

func (h *HTTPEndpoint) Detail(ctx context.Context, r *http.Request) (any, error) {
	bt, err := h.uc.Get(ctx, pkgrouter.GetParam(ctx, "id"))
	if err != nil {
		return nil, err
	}

	return toHTTPBacktest(bt), nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		return nil, err
	}

	list, err := h.uc.History(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := make(HistoryResponse, 0, len(list))
	for _, bt := range list {
		resp = append(resp, toHistoryItem(bt))
	}

	return resp, nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return usecase.DefaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > usecase.MaxHistoryLimit {
		return 0, pkgerror.NewValidation("invalid limit", pkgerror.CodeInvalidInput, errors.New("limit must be an integer between 1 and 1000"))
	}

	return limit, nil
}
