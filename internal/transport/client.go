// Package transport fetches raw vendor feed text over HTTP. The engine's
// contract is narrow: given a URL, return text or fail. Published sheets
// sometimes sit behind cross-origin restrictions, so the client can prepend
// a pass-through proxy prefix.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mapwatch/mapwatch/pkg/errors"
)

// DefaultTimeout bounds a single feed fetch.
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves raw feed text. The import pipeline depends on this
// interface so tests can substitute canned feeds.
type Fetcher interface {
	FetchText(ctx context.Context, feedURL string) (string, error)
}

// Client is the HTTP Fetcher.
type Client struct {
	http        *http.Client
	proxyPrefix string
}

// Compile-time interface check.
var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithProxyPrefix routes every fetch through a pass-through proxy: the feed
// URL is appended, escaped, to the prefix.
func WithProxyPrefix(prefix string) Option {
	return func(c *Client) {
		c.proxyPrefix = prefix
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchText performs a single GET and returns the response body as text.
// Non-2xx responses and transport failures both surface as FetchError. One
// attempt only; callers treat a failed source as skipped for the run.
func (c *Client) FetchText(ctx context.Context, feedURL string) (string, error) {
	target := feedURL
	if c.proxyPrefix != "" {
		target = c.proxyPrefix + url.QueryEscape(feedURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", errors.NewFetchError("", feedURL, 0, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewFetchError("", feedURL, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewFetchError("", feedURL, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewFetchError("", feedURL, resp.StatusCode, err)
	}
	return string(body), nil
}
