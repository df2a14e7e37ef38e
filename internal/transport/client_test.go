package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapwatch/mapwatch/pkg/errors"
)

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("sku,price\nN123,10\n"))
	}))
	defer srv.Close()

	c := New()
	body, err := c.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "N123")
}

func TestFetchTextNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	_, err := c.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsFeedUnavailable(err))

	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestFetchTextConnectionRefused(t *testing.T) {
	c := New()
	_, err := c.FetchText(context.Background(), "http://127.0.0.1:1/feed.csv")
	require.Error(t, err)
	assert.True(t, errors.IsFeedUnavailable(err))
}

func TestFetchTextProxyPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	feed := "https://sheets.example.com/pub?output=csv"
	c := New(WithProxyPrefix(srv.URL + "/proxy?url="))
	body, err := c.FetchText(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Contains(t, gotPath, url.QueryEscape(feed))
}
