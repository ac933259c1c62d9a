package inbound

import (
	"errors"
	"net/http"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
)

// MapError converts dataset domain errors into application errors with a
// stable HTTP status. Anything unrecognized becomes a 500.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return pkgerror.NewValidation("file is too large", pkgerror.CodePayloadTooLarge, err)
	case errors.Is(err, entity.ErrPathSecurity):
		return pkgerror.NewValidation("invalid filename", pkgerror.CodeInvalidFormat, err)
	case errors.Is(err, entity.ErrInvalidFormat):
		return pkgerror.NewValidation("Only CSV files are allowed", pkgerror.CodeInvalidFormat, err)
	case errors.Is(err, entity.ErrDecode):
		return pkgerror.NewValidation("file content is not valid UTF-8 CSV", pkgerror.CodeInvalidFormat, err)
	case errors.Is(err, entity.ErrDuplicateFilename):
		return pkgerror.NewValidation("file already exists", pkgerror.CodeConflict, err)
	case errors.Is(err, entity.ErrNotFound):
		return pkgerror.NewValidation("file not found", pkgerror.CodeNotFound, err)
	default:
		return pkgerror.NewServer(err)
	}
}
