package pim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/composable-com/ct-connect-akeneo/internal/httpclient"
)

const (
	tokenPath = "/api/oauth/v1/token"
	restPath  = "/api/rest/v1"

	// updatedLayout is the date format the search filter expects
	updatedLayout = "2006-01-02 15:04:05"

	// maxTokenRetries is how many times a call is replayed after reacquiring a token
	maxTokenRetries = 2
)

// ErrNoDownloadLink is returned when an asset has no media to download.
var ErrNoDownloadLink = errors.New("asset has no download link")

// Config holds the PIM connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration
}

// Client talks to the PIM REST API. Requests are authenticated with a password
// grant token which is reacquired when the API reports it as invalid.
type Client struct {
	baseURL    string
	http       httpclient.Client
	tokens     *tokenProvider
	newBackOff func() backoff.BackOff
}

// Option customizes a Client.
type Option func(*Client)

// WithBackOff sets the backoff used between token retries.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// NewClient creates a PIM client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("pim base URL is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("pim client id, client secret, username and password are required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpclient.DefaultTimeout
	}

	tokens := &tokenProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  base + tokenPath,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
		base:     &http.Client{Timeout: timeout},
	}

	c := &Client{
		baseURL: base,
		http: httpclient.NewDefaultClient(&http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: tokens},
		}),
		tokens: tokens,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts returns one page of products using search_after pagination.
func (c *Client) ListProducts(ctx context.Context, params ListParams) (*Page, error) {
	q, err := productQuery(params)
	if err != nil {
		return nil, err
	}
	q.Set("pagination_type", "search_after")
	if params.SearchAfter != "" {
		q.Set("search_after", params.SearchAfter)
	}

	data, err := c.get(ctx, c.baseURL+restPath+"/products?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	page := &Page{}
	if items := gjson.GetBytes(data, "_embedded.items"); items.Exists() {
		if err := json.Unmarshal([]byte(items.Raw), &page.Items); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
	}

	next, err := searchAfterFromLink(gjson.GetBytes(data, "_links.next.href").String())
	if err != nil {
		return nil, err
	}
	page.NextCursor = next

	return page, nil
}

// CountProducts returns how many products match the filter. Counting is only
// available with page based pagination so it is a separate call.
func (c *Client) CountProducts(ctx context.Context, params ListParams) (int, error) {
	params.Limit = 1
	q, err := productQuery(params)
	if err != nil {
		return 0, err
	}
	q.Set("with_count", "true")

	data, err := c.get(ctx, c.baseURL+restPath+"/products?"+q.Encode())
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return int(gjson.GetBytes(data, "items_count").Int()), nil
}

// GetProductModel fetches a product model by code.
func (c *Client) GetProductModel(ctx context.Context, code string) (*ProductModel, error) {
	data, err := c.get(ctx, c.baseURL+restPath+"/product-models/"+url.PathEscape(code))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product model %q: %w", code, err)
	}

	var model ProductModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode product model %q: %w", code, err)
	}
	return &model, nil
}

// GetAssetDownloadURL resolves the download link of the first media of an asset.
func (c *Client) GetAssetDownloadURL(ctx context.Context, assetFamily, code string) (string, error) {
	u := fmt.Sprintf("%s%s/asset-families/%s/assets/%s",
		c.baseURL, restPath, url.PathEscape(assetFamily), url.PathEscape(code))
	data, err := c.get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("failed to fetch asset %s/%s: %w", assetFamily, code, err)
	}

	href := gjson.GetBytes(data, "values.media.0._links.download.href").String()
	if href == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrNoDownloadLink, assetFamily, code)
	}
	return href, nil
}

// GetFile downloads a binary file from an authenticated URL.
func (c *Client) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	data, err := c.do(ctx, httpclient.Request{Method: http.MethodGet, URL: fileURL, Accept: "*/*"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("failed to fetch file: empty body")
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	return c.do(ctx, httpclient.Request{Method: http.MethodGet, URL: u})
}

// do replays a request at most maxTokenRetries times when the token was
// rejected, dropping the cached token before each replay.
func (c *Client) do(ctx context.Context, req httpclient.Request) ([]byte, error) {
	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		data, err := c.http.Do(ctx, req)
		if err == nil {
			return data, nil
		}
		if isTokenError(err) {
			slog.Debug("PIM rejected access token, reacquiring", "attempt", attempt, "url", req.URL)
			c.tokens.Reset()
			return nil, err
		}
		if httpclient.IsRetryable(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(maxTokenRetries+1))
}

func productQuery(params ListParams) (url.Values, error) {
	search := map[string]any{
		"completeness": []map[string]any{{
			"operator": ">=",
			"value":    completenessValue(params.Completeness),
			"scope":    params.Scope,
		}},
		"family": []map[string]any{{
			"operator": "IN",
			"value":    params.Families,
		}},
	}
	if params.UpdatedAfter != nil {
		search["updated"] = []map[string]any{{
			"operator": ">",
			"value":    params.UpdatedAfter.UTC().Format(updatedLayout),
		}}
	}

	encoded, err := json.Marshal(search)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search filter: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("search", string(encoded))
	return q, nil
}

// completenessValue sends numeric completeness as a number when possible.
func completenessValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}

func searchAfterFromLink(href string) (string, error) {
	if href == "" {
		return "", nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", href, err)
	}
	return u.Query().Get("search_after"), nil
}

func isTokenError(err error) bool {
	if httpclient.IsStatus(err, http.StatusUnauthorized) {
		return true
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return false
	}
	return strings.Contains(err.Error(), "access token")
}

// tokenProvider hands out password grant tokens and can be reset to force a
// new grant on the next request.
type tokenProvider struct {
	oauth    oauth2.Config
	username string
	password string
	timeout  time.Duration
	base     *http.Client

	mu  sync.Mutex
	src oauth2.TokenSource
}

// Token implements oauth2.TokenSource
func (p *tokenProvider) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	if p.src == nil {
		p.src = oauth2.ReuseTokenSource(nil, oauth2.TokenSource(passwordGrant{p}))
	}
	src := p.src
	p.mu.Unlock()
	return src.Token()
}

// Reset drops the cached token.
func (p *tokenProvider) Reset() {
	p.mu.Lock()
	p.src = nil
	p.mu.Unlock()
}

type passwordGrant struct {
	p *tokenProvider
}

func (g passwordGrant) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.p.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.p.base)

	tok, err := g.p.oauth.PasswordCredentialsToken(ctx, g.p.username, g.p.password)
	if err != nil {
		return nil, fmt.Errorf("pim authentication failed: %w", err)
	}
	return tok, nil
}
