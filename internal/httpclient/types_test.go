package httpclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/composable-com/ct-connect-akeneo/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		method        string
		url           string
		body          string
		expectedError string
	}{
		{
			name:          "with body",
			statusCode:    404,
			method:        "GET",
			url:           "http://example.com",
			body:          "Not Found",
			expectedError: "HTTP 404 for GET http://example.com: Not Found",
		},
		{
			name:          "without body",
			statusCode:    500,
			method:        "POST",
			url:           "http://api.example.com/v1/data",
			expectedError: "HTTP 500 for POST http://api.example.com/v1/data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := httpclient.NewHTTPError(tt.statusCode, tt.method, tt.url, tt.body)
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestIsStatus_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetching product: %w", httpclient.NewHTTPError(404, "GET", "u", ""))
	assert.True(t, httpclient.IsNotFound(err))
	assert.True(t, httpclient.IsStatus(err, 404))
	assert.False(t, httpclient.IsStatus(errors.New("plain"), 404))
}
