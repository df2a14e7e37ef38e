// Package tabular parses delimited feed text into raw rows. Vendor sheets
// arrive as CSV or TSV exports with ragged rows, stray BOMs, and noise rows
// above the data; this package normalizes all of that into [][]string and
// slices away header rows.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	mwerrors "github.com/mapwatch/mapwatch/pkg/errors"
)

// Parse reads delimited text into rows. The delimiter is detected from the
// first line (comma, tab, or semicolon); ragged rows are kept as-is rather
// than rejected, since sparse vendor rows are expected.
func Parse(raw string) ([][]string, error) {
	data := bytes.TrimPrefix([]byte(raw), []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, mwerrors.NewParseError("csv", "", err.Error(), err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// SliceHeader drops the header/noise rows. headerRow is 1-based and names
// the last non-data row, so data begins at headerRow+1. A headerRow beyond
// the sheet is a configuration failure, not a crash; a headerRow equal to
// the sheet length simply yields no data rows.
func SliceHeader(rows [][]string, headerRow int) ([][]string, error) {
	if headerRow < 1 {
		return nil, mwerrors.NewValidationError("header_row", headerRow, "must be >= 1")
	}
	if headerRow > len(rows) {
		return nil, mwerrors.ErrHeaderRowOutOfBounds
	}
	return rows[headerRow:], nil
}

// detectDelimiter picks the delimiter by counting occurrences in the first
// line. Comma wins ties; feeds observed so far use commas or tabs.
func detectDelimiter(data []byte) rune {
	line := string(data)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{'\t', ';'} {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
