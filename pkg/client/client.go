// Package client talks to the cover generation server.
package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"coverstudio/internal/domain"
)

// CoverRequest is the structured cover description sent to the server.
type CoverRequest = domain.CoverRequest

// Bool returns a pointer to v, for CoverRequest.IncludeText.
func Bool(v bool) *bool {
	return domain.Bool(v)
}

// Client is a thin HTTP client for the cover server.
type Client struct {
	Options []RequestOption
}

// New returns a client for the server at url, e.g. http://localhost:5179.
func New(url string, opts ...RequestOption) *Client {
	return &Client{Options: append([]RequestOption{WithURL(url)}, opts...)}
}

// RequestConfig holds per-call settings assembled from options.
type RequestConfig struct {
	URL            string
	Client         *http.Client
	IdempotencyKey string
	Headers        http.Header
}

type RequestOption func(*RequestConfig)

func WithURL(url string) RequestOption {
	return func(c *RequestConfig) {
		c.URL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// WithHTTPClient replaces the default client. Image generation can take a
// minute or more, so custom clients should allow for that.
func WithHTTPClient(client *http.Client) RequestOption {
	return func(c *RequestConfig) {
		c.Client = client
	}
}

// WithIdempotencyKey lets the server collapse concurrent duplicates of one submission.
func WithIdempotencyKey(key string) RequestOption {
	return func(c *RequestConfig) {
		c.IdempotencyKey = key
	}
}

func WithHeader(key, value string) RequestOption {
	return func(c *RequestConfig) {
		if c.Headers == nil {
			c.Headers = http.Header{}
		}
		c.Headers.Set(key, value)
	}
}

var defaultHTTPClient = &http.Client{Timeout: 3 * time.Minute}

func (c *Client) config(opts ...RequestOption) *RequestConfig {
	cfg := &RequestConfig{Client: defaultHTTPClient}
	for _, opt := range append(append([]RequestOption{}, c.Options...), opts...) {
		opt(cfg)
	}
	return cfg
}

// Error is a non-2xx answer from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("client: server returned %d: %s", e.StatusCode, e.Message)
}
