// Package fetch retrieves raw page content over HTTP with a fixed
// timeout, a stable User-Agent, and bounded retries on transient
// network failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; rentwatch/1.0; +https://github.com/ppiankov/rentwatch)"

	maxRetries  = 3
	maxBodySize = 10 << 20 // 10 MiB cap on a single page
)

// sleepFunc is the function used for retry backoff delays. It defaults
// to time.Sleep but can be overridden in tests.
var sleepFunc = time.Sleep

// Client fetches pages. The zero value is not usable; use New.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a fetch client. Zero timeout and empty userAgent fall
// back to the defaults.
func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// HTTPClient returns an *http.Client that injects the configured
// User-Agent, for libraries that take a client rather than a URL.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{
		Timeout:   c.http.Timeout,
		Transport: &uaTransport{userAgent: c.userAgent, base: http.DefaultTransport},
	}
}

// Get fetches url and returns the response body. Non-2xx statuses are
// errors. Retryable failures are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("fetch client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !isRetryableError(err) {
			return nil, err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s
			sleepFunc(backoff)
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	// Timeout errors
	if strings.Contains(s, "timeout") || strings.Contains(s, "Timeout") {
		return true
	}
	// Connection errors
	if strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") {
		return true
	}
	// HTTP 5xx errors (server-side, worth retrying)
	if strings.Contains(s, "HTTP 500") || strings.Contains(s, "HTTP 502") ||
		strings.Contains(s, "HTTP 503") || strings.Contains(s, "HTTP 504") {
		return true
	}
	return false
}

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
