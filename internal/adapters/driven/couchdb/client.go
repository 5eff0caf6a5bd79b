// Package couchdb implements the document-store port against a
// CouchDB-compatible HTTP server. Only the two endpoints the core
// consumes are wrapped: _all_docs for revision listings and
// _bulk_docs for the single batched write.
package couchdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// requestRate throttles outgoing requests. A push makes at most a
	// handful of calls; this only guards watch mode's re-push loop.
	requestRate = 5

	// requestBurst allows the revision listings of both pipelines to
	// go out together.
	requestBurst = 2
)

// ServerError is a non-2xx response from the store.
type ServerError struct {
	Status int
	Err    string
	Reason string
}

func (e *ServerError) Error() string {
	if e.Err == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s: %s", e.Status, e.Err, e.Reason)
}

// Client is a minimal CouchDB database client. The configured URL
// addresses one database, e.g. http://localhost:5984/myapp.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	username   string
	password   string
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets basic-auth credentials.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use this
// together with httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the database at rawURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	if strings.Trim(base.Path, "/") == "" {
		return nil, fmt.Errorf("database URL %s names no database", rawURL)
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestRate), requestBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DatabaseURL returns the configured database URL without credentials.
func (c *Client) DatabaseURL() string {
	return c.base.String()
}

// do issues one request against a path under the database, encoding
// body as JSON when non-nil and decoding the response into out.
func (c *Client) do(ctx context.Context, method, subpath string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/")
	if subpath != "" {
		u.Path += "/" + subpath
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, subpath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := &ServerError{Status: resp.StatusCode}
		// The error body is advisory; the status already decides.
		var detail struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil {
			serverErr.Err = detail.Error
			serverErr.Reason = detail.Reason
		}
		return serverErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
