package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	// Body holds the (possibly truncated) response payload, useful because
	// both upstream APIs explain failures in the body.
	Body string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d for %s %s", e.StatusCode, e.Method, e.URL)
	}
	return fmt.Sprintf("HTTP %d for %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, method, url, body string) error {
	return &HTTPError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == code
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsRetryable reports whether the request may succeed if replayed.
func IsRetryable(err error) bool {
	var herr *HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	return herr.StatusCode == http.StatusTooManyRequests ||
		herr.StatusCode == http.StatusBadGateway ||
		herr.StatusCode == http.StatusServiceUnavailable ||
		herr.StatusCode == http.StatusGatewayTimeout
}
