package api

import (
	"log/slog"
	"net/http"
	"time"
)

// Default request timeouts. Bounds queries are cheap aggregate lookups;
// batch fetches can scan months of records server-side.
const (
	DefaultBoundsTimeout = 10 * time.Second
	DefaultFetchTimeout  = 30 * time.Second
)

// Client provides access to the telemetry backend's REST endpoints.
type Client struct {
	boundsURL string
	fetchURL  string

	httpClient *http.Client
	logger     *slog.Logger

	boundsTimeout time.Duration
	fetchTimeout  time.Duration
	maxRetries    int
	retryBackoff  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a backend client for the given endpoint URLs.
func NewClient(boundsURL, fetchURL string, opts ...ClientOption) *Client {
	c := &Client{
		boundsURL:     boundsURL,
		fetchURL:      fetchURL,
		httpClient:    &http.Client{},
		logger:        slog.Default(),
		boundsTimeout: DefaultBoundsTimeout,
		fetchTimeout:  DefaultFetchTimeout,
		maxRetries:    2,
		retryBackoff:  time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeouts sets the per-endpoint request timeouts.
func WithTimeouts(bounds, fetch time.Duration) ClientOption {
	return func(c *Client) {
		if bounds > 0 {
			c.boundsTimeout = bounds
		}
		if fetch > 0 {
			c.fetchTimeout = fetch
		}
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
