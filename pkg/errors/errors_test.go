package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	notFound := NewNotFoundError("source", "nike")
	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.True(t, IsNotFound(notFound))
	assert.Contains(t, notFound.Error(), "nike")

	invalid := NewValidationError("headerRow", 0, "must be >= 1")
	assert.True(t, IsValidationError(invalid))
	assert.Contains(t, invalid.Error(), "headerRow")
}

func TestFetchErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	fetchErr := NewFetchError("adidas", "https://example.com/feed", 0, cause)

	assert.True(t, errors.Is(fetchErr, ErrFeedUnavailable))
	assert.Equal(t, cause, errors.Unwrap(fetchErr))

	statusErr := NewFetchError("adidas", "https://example.com/feed", 503, nil)
	assert.Contains(t, statusErr.Error(), "503")
}

func TestFetchErrorWithoutSource(t *testing.T) {
	// The transport layer builds FetchErrors before any source identity is
	// known; the message falls back to the URL with no dangling blank.
	statusErr := NewFetchError("", "https://example.com/feed", 404, nil)
	assert.NotContains(t, statusErr.Error(), "for  (")
	assert.Contains(t, statusErr.Error(), "404")
	assert.Contains(t, statusErr.Error(), "https://example.com/feed")

	wrapped := NewFetchError("", "https://example.com/feed", 0, errors.New("connection refused"))
	assert.Contains(t, wrapped.Error(), "https://example.com/feed")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestSourceErrorCarriesIdentity(t *testing.T) {
	cause := fmt.Errorf("ragged row at line 12")
	srcErr := NewSourceError("nike", "parse", cause)

	assert.Contains(t, srcErr.Error(), "nike")
	assert.Contains(t, srcErr.Error(), "parse")
	assert.Equal(t, cause, errors.Unwrap(srcErr))
}

func TestWrapHelpersNilPassthrough(t *testing.T) {
	assert.Nil(t, WrapParse("csv", "feed.csv", nil))
	assert.Nil(t, WrapStore("clear", nil))
	assert.Nil(t, WrapSource("nike", "fetch", nil))
	assert.Nil(t, WrapValidation("sku", nil))
}

func TestStoreErrorFormatting(t *testing.T) {
	err := NewStoreError("clear", errors.New("disk full"))
	assert.Contains(t, err.Error(), "clear")
	assert.Contains(t, err.Error(), "disk full")
}
