package usecase

import (
	"io/fs"
)

// IngestInput is one upload as received from a caller.
type IngestInput struct {
	Filename string
	Symbol   string
	Content  []byte
}

// StoredFile is a dataset file found on disk during rehydration.
type StoredFile struct {
	Name string
	Info fs.FileInfo
}

// RehydrateResult summarizes a startup reconciliation between disk and registry.
type RehydrateResult struct {
	Registered []string
	Skipped    []string
	Dropped    []string
}
