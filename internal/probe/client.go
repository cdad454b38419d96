package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxDrainSize = 1 << 20 // 1MB

// DefaultURL is the well-known endpoint probed when none is configured.
const DefaultURL = "https://www.google.com"

// DefaultTimeout bounds a single probe request.
const DefaultTimeout = 10 * time.Second

const (
	defaultMaxIdleConns    = 4
	defaultIdleConnTimeout = 30 * time.Second
)

// Client is an HTTP client wrapper that answers one question: can the probe
// URL be reached right now?
//
// Client uses a per-request timeout via context rather than a global
// timeout. Responses are drained (up to 1MB) and discarded so the
// underlying connection can be reused by the next probe.
type Client struct {
	httpClient *http.Client
	url        string
	method     string
	timeout    time.Duration
}

// NewClient creates a probe [Client] for url.
//
// method must be GET or HEAD; empty defaults to HEAD. A non-positive
// timeout falls back to [DefaultTimeout].
func NewClient(url, method string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, errors.New("probe url is required")
	}
	switch method {
	case "":
		method = http.MethodHead
	case http.MethodGet, http.MethodHead:
	default:
		return nil, fmt.Errorf("probe method must be GET or HEAD, got %q", method)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				MaxIdleConns:      defaultMaxIdleConns,
				IdleConnTimeout:   defaultIdleConnTimeout,
				DisableKeepAlives: false,
			},
			// a redirect is still proof of reachability
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		url:     url,
		method:  method,
		timeout: timeout,
	}, nil
}

// URL returns the probed URL.
func (c *Client) URL() string {
	return c.url
}

// Probe performs one request against the probe URL.
//
// The response status code and body are ignored: any completed HTTP
// exchange returns nil. DNS failures, refused connections, TLS errors and
// timeouts all return an error.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, c.method, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))
	return nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil receiver. The client remains
// usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
