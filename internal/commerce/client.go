package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/composable-com/ct-connect-akeneo/internal/httpclient"
)

// ErrConcurrentModification is returned when a versioned write lost the race.
var ErrConcurrentModification = errors.New("concurrent modification")

const maxAttempts = 3

// Config holds the commerce API connection settings.
type Config struct {
	APIURL       string
	AuthURL      string
	ProjectKey   string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// Client talks to the commerce API using client credentials.
type Client struct {
	projectURL string
	http       httpclient.Client
	newBackOff func() backoff.BackOff
}

// Option customizes a Client.
type Option func(*Client)

// WithBackOff sets the backoff used when retrying throttled requests.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// WithHTTPClient replaces the authenticated transport, mostly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = httpclient.NewDefaultClient(client)
	}
}

// NewClient creates a commerce API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIURL == "" || cfg.ProjectKey == "" {
		return nil, errors.New("commerce API URL and project key are required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpclient.DefaultTimeout
	}

	c := &Client{
		projectURL: strings.TrimRight(cfg.APIURL, "/") + "/" + url.PathEscape(cfg.ProjectKey),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			return b
		},
	}

	if cfg.AuthURL != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/oauth/token",
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		authed := creds.Client(ctx)
		authed.Timeout = timeout
		c.http = httpclient.NewDefaultClient(authed)
	} else {
		c.http = httpclient.NewDefaultClient(&http.Client{Timeout: timeout})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FindByParentCode returns the staged product projection whose master variant
// carries the given akeneo_parent_code, or nil if there is none.
func (c *Client) FindByParentCode(ctx context.Context, parentCode string) (*ProductProjection, error) {
	q := url.Values{}
	q.Set("staged", "true")
	q.Set("limit", "1")
	q.Set("where", fmt.Sprintf(`masterVariant(attributes(name="akeneo_parent_code" and value=%q))`, parentCode))

	var res struct {
		Total   int                 `json:"total"`
		Results []ProductProjection `json:"results"`
	}
	if err := c.getJSON(ctx, c.projectURL+"/product-projections?"+q.Encode(), &res); err != nil {
		return nil, fmt.Errorf("failed to query product projections: %w", err)
	}
	if len(res.Results) == 0 {
		return nil, nil
	}
	return &res.Results[0], nil
}

// CreateProduct creates a product from a draft.
func (c *Client) CreateProduct(ctx context.Context, draft ProductDraft) (*Product, error) {
	var p Product
	if err := c.sendJSON(ctx, http.MethodPost, c.projectURL+"/products", draft, &p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies actions to a product at the given version.
func (c *Client) UpdateProduct(ctx context.Context, id string, version int64, actions []UpdateAction) (*Product, error) {
	body := struct {
		Version int64          `json:"version"`
		Actions []UpdateAction `json:"actions"`
	}{Version: version, Actions: actions}

	var p Product
	err := c.sendJSON(ctx, http.MethodPost, c.projectURL+"/products/"+url.PathEscape(id), body, &p)
	if httpclient.IsStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("%w: product %s at version %d: %v", ErrConcurrentModification, id, version, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &p, nil
}

// GetProduct fetches a product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.getJSON(ctx, c.projectURL+"/products/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return &p, nil
}

// AddProductImage uploads an image to the variant identified by SKU.
func (c *Client) AddProductImage(ctx context.Context, id string, img ImageUpload) (*Product, error) {
	q := url.Values{}
	q.Set("filename", img.Filename)
	if img.SKU != "" {
		q.Set("sku", img.SKU)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}

	u := c.projectURL + "/products/" + url.PathEscape(id) + "/images?" + q.Encode()
	var p Product
	err := c.retry(ctx, func() error {
		data, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodPost, URL: u, Body: img.Data, ContentType: contentType})
		if err != nil {
			return err
		}
		return decode(data, &p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image %s: %w", img.Filename, err)
	}
	return &p, nil
}

// GetCustomObject fetches a custom object. A missing object yields an
// error for which httpclient.IsNotFound is true.
func (c *Client) GetCustomObject(ctx context.Context, container, key string) (*CustomObject, error) {
	var obj CustomObject
	if err := c.getJSON(ctx, c.customObjectURL(container, key), &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// PutCustomObject creates or updates a custom object. A version mismatch is
// reported as ErrConcurrentModification.
func (c *Client) PutCustomObject(ctx context.Context, draft CustomObjectDraft) (*CustomObject, error) {
	var obj CustomObject
	err := c.sendJSON(ctx, http.MethodPost, c.projectURL+"/custom-objects", draft, &obj)
	if httpclient.IsStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("%w: %s/%s", ErrConcurrentModification, draft.Container, draft.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write custom object %s/%s: %w", draft.Container, draft.Key, err)
	}
	return &obj, nil
}

// DeleteCustomObject deletes a custom object. Deleting a missing object is not an error.
func (c *Client) DeleteCustomObject(ctx context.Context, container, key string) error {
	err := c.retry(ctx, func() error {
		_, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodDelete, URL: c.customObjectURL(container, key)})
		return err
	})
	if err != nil && !httpclient.IsNotFound(err) {
		return fmt.Errorf("failed to delete custom object %s/%s: %w", container, key, err)
	}
	return nil
}

func (c *Client) customObjectURL(container, key string) string {
	return c.projectURL + "/custom-objects/" + url.PathEscape(container) + "/" + url.PathEscape(key)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	return c.retry(ctx, func() error {
		return httpclient.GetJSON(ctx, c.http, u, out)
	})
}

func (c *Client) sendJSON(ctx context.Context, method, u string, in, out any) error {
	return c.retry(ctx, func() error {
		return httpclient.SendJSON(ctx, c.http, method, u, in, out)
	})
}

// retry replays throttled or unavailable responses. Everything else fails fast.
func (c *Client) retry(ctx context.Context, op func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil || httpclient.IsRetryable(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(maxAttempts))
	return err
}

func decode(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
