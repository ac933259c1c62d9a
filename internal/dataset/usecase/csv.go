package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// HasCSVExtension reports whether filename ends in .csv, ignoring case.
func HasCSVExtension(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// ValidateCSV checks the filename extension and the content, and returns the
// number of data rows. The first record is always the header and is not
// counted; blank lines are not rows.
func ValidateCSV(filename string, content []byte) (int64, error) {
	if !HasCSVExtension(filename) {
		return 0, fmt.Errorf("%w: %q", entity.ErrInvalidFormat, filename)
	}

	if !utf8.Valid(content) {
		return 0, fmt.Errorf("%w: invalid UTF-8 sequence", entity.ErrDecode)
	}

	return countRows(bytes.TrimPrefix(content, utf8BOM))
}

func countRows(content []byte) (int64, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var records int64
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", entity.ErrDecode, err)
		}
		records++
	}

	if records == 0 {
		return 0, nil
	}

	return records - 1, nil
}
