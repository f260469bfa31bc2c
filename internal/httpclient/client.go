// Package httpclient wraps net/http with a process-wide pooled
// transport and convenience methods for JSON APIs.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	connectTimeout = 10 * time.Second
	maxConns       = 20
	maxIdleConns   = 5
)

var (
	transportMu     sync.Mutex
	sharedTransport *http.Transport
)

// sharedRoundTripper lazily builds the process-wide pooled transport:
// 10s connect timeout, at most 20 connections per host, 5 kept alive.
// Redirects are followed by http.Client's default policy.
func sharedRoundTripper() *http.Transport {
	transportMu.Lock()
	defer transportMu.Unlock()
	if sharedTransport == nil {
		sharedTransport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			MaxConnsPerHost:     maxConns,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConns,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return sharedTransport
}

// Shutdown releases the shared connection pool. The next client created
// after Shutdown builds a fresh pool.
func Shutdown() {
	transportMu.Lock()
	t := sharedTransport
	sharedTransport = nil
	transportMu.Unlock()
	if t != nil {
		t.CloseIdleConnections()
	}
}

// Client wraps net/http.Client with convenience methods for JSON APIs.
// All clients share one pooled transport; the per-client total timeout
// is the only distinguishing knob.
type Client struct {
	http *http.Client
}

// Response wraps the status code, body bytes, and optional JSON decode
// error from a completed HTTP request. The underlying http.Response
// body is already closed; callers read from Body instead.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	JSONErr    error
}

// New creates a Client with a 30-second total timeout.
func New() *Client {
	return NewWithTimeout(30 * time.Second)
}

// NewWithTimeout creates a Client with the given total timeout.
func NewWithTimeout(timeout time.Duration) *Client {
	return &Client{http: &http.Client{
		Timeout:   timeout,
		Transport: sharedRoundTripper(),
	}}
}

// NewFromConfig creates a Client using the config timeout (in seconds).
// Falls back to 30s if the value is zero or negative.
func NewFromConfig(timeoutSeconds float64) *Client {
	if timeoutSeconds <= 0 {
		return New()
	}
	return NewWithTimeout(time.Duration(timeoutSeconds * float64(time.Second)))
}

// RequestOption configures an http.Request before it is sent.
type RequestOption func(*http.Request)

// DoCtx sends an HTTP request with the given context, method and URL,
// applies options, reads the full body, and returns a Response. A
// non-nil error indicates a network-level failure (DNS, connect,
// timeout) or context cancellation; HTTP error status codes are
// returned in Response.StatusCode.
func (c *Client) DoCtx(ctx context.Context, method, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// GetJSONCtx sends a GET request and decodes the response body as JSON
// into out. If out is nil, the body is still read and captured but not
// decoded. JSON decode errors are captured in Response.JSONErr rather
// than returned as the function error.
func (c *Client) GetJSONCtx(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	resp, err := c.DoCtx(ctx, http.MethodGet, rawURL, nil, opts...)
	if err != nil {
		return nil, err
	}
	if out != nil {
		resp.JSONErr = json.Unmarshal(resp.Body, out)
	}
	return resp, nil
}

// PostJSONCtx sends a POST request with a JSON-encoded body and decodes
// the response as JSON into out. If body is nil the request has no
// body. Content-Type is set to application/json automatically.
func (c *Client) PostJSONCtx(ctx context.Context, rawURL string, body any, out any, opts ...RequestOption) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	allOpts := append([]RequestOption{WithHeader("Content-Type", "application/json")}, opts...)
	resp, err := c.DoCtx(ctx, http.MethodPost, rawURL, reader, allOpts...)
	if err != nil {
		return nil, err
	}
	if out != nil {
		resp.JSONErr = json.Unmarshal(resp.Body, out)
	}
	return resp, nil
}

// PostFormCtx sends a POST request with URL-encoded form data and
// decodes the response as JSON into out.
func (c *Client) PostFormCtx(ctx context.Context, rawURL string, form map[string]string, out any, opts ...RequestOption) (*Response, error) {
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	allOpts := append([]RequestOption{WithHeader("Content-Type", "application/x-www-form-urlencoded")}, opts...)
	resp, err := c.DoCtx(ctx, http.MethodPost, rawURL, strings.NewReader(vals.Encode()), allOpts...)
	if err != nil {
		return nil, err
	}
	if out != nil {
		resp.JSONErr = json.Unmarshal(resp.Body, out)
	}
	return resp, nil
}
