// Package columns translates spreadsheet column letters into positional
// indices and extracts canonical fields from raw feed rows. Vendor feeds map
// brand-independent field names ("sku", "price") to source-specific column
// letters; this package is the bridge between that configuration and the raw
// row data.
package columns

import "strings"

// NotFound is the sentinel index returned for empty, malformed, or
// out-of-range column letters.
const NotFound = -1

// LetterToIndex resolves a column letter to its zero-based index ("A" = 0).
// Input is case-insensitive and whitespace-trimmed. Multi-letter columns
// ("AA", "AB", ...) decode positionally, so "AA" = 26. Returns NotFound for
// empty or malformed input.
func LetterToIndex(letter string) int {
	s := strings.ToUpper(strings.TrimSpace(letter))
	if s == "" {
		return NotFound
	}

	index := 0
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return NotFound
		}
		index = index*26 + int(c-'A') + 1
	}
	return index - 1
}

// IndexToLetter converts a zero-based column index back to its letter form
// (0 = "A", 26 = "AA"). Returns "" for negative input.
func IndexToLetter(index int) string {
	if index < 0 {
		return ""
	}

	var b []byte
	n := index + 1
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Extractor resolves canonical field names against a field-to-letter mapping
// once, then extracts cells from raw rows by position. Sparse and short rows
// are expected; extraction from them yields a missing value, not an error.
type Extractor struct {
	indices map[string]int
}

// NewExtractor builds an extractor from a field-to-column-letter mapping.
// Fields with malformed letters resolve to NotFound and always extract as
// missing.
func NewExtractor(mapping map[string]string) *Extractor {
	indices := make(map[string]int, len(mapping))
	for field, letter := range mapping {
		indices[field] = LetterToIndex(letter)
	}
	return &Extractor{indices: indices}
}

// Fields returns the canonical field names this extractor knows about.
func (e *Extractor) Fields() []string {
	fields := make([]string, 0, len(e.indices))
	for field := range e.indices {
		fields = append(fields, field)
	}
	return fields
}

// Index returns the resolved zero-based index for a field, or NotFound.
func (e *Extractor) Index(field string) int {
	index, ok := e.indices[field]
	if !ok {
		return NotFound
	}
	return index
}

// Extract returns the cell for the given field in the row. The second return
// is false when the field is unmapped, the letter was malformed, or the row
// is too short to contain the column.
func (e *Extractor) Extract(row []string, field string) (string, bool) {
	index, ok := e.indices[field]
	if !ok || index == NotFound || index >= len(row) {
		return "", false
	}
	return row[index], true
}
