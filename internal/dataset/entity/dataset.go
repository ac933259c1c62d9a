package entity

import (
	"strings"
	"time"
)

// DefaultSymbol labels datasets uploaded without a symbol.
const DefaultSymbol = "DEFAULT"

const bytesPerMB = 1024 * 1024

// Dataset is one uploaded CSV price series and its derived metadata.
//
// Everything except Status is fixed at ingestion time.
type Dataset struct {
	Filename   string
	Symbol     string
	UploadedAt time.Time
	RowCount   int64
	SizeBytes  int64
	Status     Status
}

// SizeMB is the unrounded size in mebibytes. Round only for display.
func (d Dataset) SizeMB() float64 {
	return float64(d.SizeBytes) / bytesPerMB
}

// NormalizeSymbol trims s and falls back to DefaultSymbol when it is empty.
func NormalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSymbol
	}
	return s
}
