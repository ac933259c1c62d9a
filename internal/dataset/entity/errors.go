package entity

import (
	"errors"
	"fmt"

	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
)

var (
	// ErrInvalidFormat means the filename does not carry a .csv extension.
	ErrInvalidFormat = errors.New("only CSV files are allowed")

	// ErrDecode means the content is not UTF-8 or not well-formed CSV.
	ErrDecode = errors.New("file content is not valid UTF-8 CSV")

	// ErrStorage wraps any I/O failure while persisting or removing a file.
	ErrStorage = errors.New("dataset storage failure")

	// ErrPathSecurity means the filename would resolve outside the upload directory.
	ErrPathSecurity = errors.New("unsafe filename")

	// ErrDuplicateFilename is returned under DuplicateReject for an existing filename.
	ErrDuplicateFilename = errors.New("dataset already exists")

	// ErrNotFound is returned for lookups of an unknown filename.
	ErrNotFound = fmt.Errorf("dataset %w", pkgerror.ErrNotFound)
)

// IngestionError reports which ingestion stage failed and why.
type IngestionError struct {
	Stage    Stage
	Filename string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %q: %s: %v", e.Filename, e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError tags err with the stage it came from.
func NewIngestionError(stage Stage, filename string, err error) *IngestionError {
	return &IngestionError{Stage: stage, Filename: filename, Err: err}
}
