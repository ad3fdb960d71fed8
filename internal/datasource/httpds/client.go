// Package httpds implements a small HTTP datasource with built-in retry and
// exponential backoff. The pipeline uses it to download the variant summary
// file before filtering.
//
// Transient failures (transport errors, 429 and 5xx responses) are retried;
// any other response is returned to the caller as-is. Context cancellation
// aborts both in-flight requests and backoff waits.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
)

// Config configures the HTTP datasource client.
//
// Zero values are given sensible defaults:
//   - Timeout:        30m (whole-file downloads are large)
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	MaxRetries int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// UserAgent is sent with every request when set.
	UserAgent string

	// Transport is an optional custom RoundTripper. When nil, a default
	// *http.Transport is constructed based on the TLS settings.
	Transport http.RoundTripper
}

// Client wraps an http.Client with retry and backoff behavior.
type Client struct {
	httpClient *http.Client
	maxRetries int
	userAgent  string

	// newBackOff builds the wait policy for one Get; tests swap it out.
	newBackOff func() backoff.BackOff
}

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	initial, maxWait := cfg.InitialBackoff, cfg.MaxBackoff
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries: cfg.MaxRetries,
		userAgent:  cfg.UserAgent,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxWait
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Get issues a GET for url, retrying transient failures. The returned
// response has a non-nil Body which the caller must close.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	var resp *http.Response
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("httpds: build request: %w", err))
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if isRetryableStatus(r.StatusCode) {
			_ = r.Body.Close()
			return fmt.Errorf("httpds: retryable status %d from GET %s", r.StatusCode, url)
		}
		resp = r
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return resp, nil
}

// isRetryableStatus reports whether the given HTTP status code should trigger
// a retry: 5xx and 429 are treated as transient; everything else is final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}
