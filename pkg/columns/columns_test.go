package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterToIndex(t *testing.T) {
	tests := []struct {
		name   string
		letter string
		want   int
	}{
		{"first column", "A", 0},
		{"last single letter", "Z", 25},
		{"lowercase", "c", 2},
		{"whitespace trimmed", " B ", 1},
		{"double letter start", "AA", 26},
		{"double letter", "AB", 27},
		{"empty", "", NotFound},
		{"whitespace only", "   ", NotFound},
		{"digit", "7", NotFound},
		{"mixed garbage", "A1", NotFound},
		{"punctuation", "-", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LetterToIndex(tt.letter))
		})
	}
}

func TestLetterRoundTrip(t *testing.T) {
	// A..Z plus a stretch of multi-letter columns.
	for i := 0; i < 100; i++ {
		letter := IndexToLetter(i)
		assert.Equal(t, i, LetterToIndex(letter), "round trip for %q", letter)
	}
	assert.Equal(t, "", IndexToLetter(-1))
}

func TestExtractorExtract(t *testing.T) {
	e := NewExtractor(map[string]string{
		"sku":   "A",
		"price": "C",
		"color": "E",
		"bad":   "??",
	})

	row := []string{"N123", "Shoe", "119.99"}

	sku, ok := e.Extract(row, "sku")
	assert.True(t, ok)
	assert.Equal(t, "N123", sku)

	price, ok := e.Extract(row, "price")
	assert.True(t, ok)
	assert.Equal(t, "119.99", price)

	// Short row: column E is beyond the row.
	_, ok = e.Extract(row, "color")
	assert.False(t, ok)

	// Malformed letter resolves to NotFound.
	_, ok = e.Extract(row, "bad")
	assert.False(t, ok)
	assert.Equal(t, NotFound, e.Index("bad"))

	// Unmapped field.
	_, ok = e.Extract(row, "gender")
	assert.False(t, ok)
	assert.Equal(t, NotFound, e.Index("gender"))
}

func TestExtractorEmptyRow(t *testing.T) {
	e := NewExtractor(map[string]string{"sku": "A"})

	_, ok := e.Extract(nil, "sku")
	assert.False(t, ok)

	_, ok = e.Extract([]string{}, "sku")
	assert.False(t, ok)
}
