// Package httpclient provides the HTTP plumbing shared by the PIM and commerce
// API clients.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// maxErrorBody caps how much of an error response ends up in HTTPError
	maxErrorBody = 2048

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "ct-connect-akeneo/1.0"
)

// Request describes a single API call.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Accept      string
}

// Client is an interface for HTTP operations
type Client interface {
	// Do performs the request and returns the response body for 2xx responses
	Do(ctx context.Context, req Request) ([]byte, error)
}

// DefaultClient is the default HTTP client implementation. Authentication is
// the responsibility of the wrapped http.Client transport.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient wraps an existing http.Client. A nil client gets a plain one
// with DefaultTimeout.
func NewDefaultClient(client *http.Client) *DefaultClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if client.Timeout == 0 {
		client.Timeout = DefaultTimeout
	}
	return &DefaultClient{client: client}
}

// Do performs an HTTP request
func (c *DefaultClient) Do(ctx context.Context, r Request) ([]byte, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	accept := r.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, NewHTTPError(resp.StatusCode, r.Method, r.URL, string(bytes.TrimSpace(msg)))
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// +1 to detect if limit exceeded
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	return data, nil
}

// GetJSON performs a GET and decodes the JSON response into out.
func GetJSON(ctx context.Context, c Client, url string, out any) error {
	data, err := c.Do(ctx, Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// SendJSON encodes in as the request body, performs the call and decodes the
// response into out when out is not nil.
func SendJSON(ctx context.Context, c Client, method, url string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	data, err := c.Do(ctx, Request{Method: method, URL: url, Body: payload, ContentType: "application/json"})
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
