// Package backend talks to the version tracker API that serves the product
// catalog and per-product build histories.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wowtoc/internal/observability"
)

// DefaultRequestTimeout bounds a single backend request.
const DefaultRequestTimeout = 10 * time.Second

// ErrStatus is returned for non-2xx backend responses.
var ErrStatus = errors.New("unexpected backend status")

// Client fetches catalog data from the backend.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products returns the ordered product list. A missing or malformed
// "products" field yields an empty list rather than an error.
func (c *Client) Products(ctx context.Context) (_ []string, err error) {
	defer func(start time.Time) { observability.ObserveBackend("products", start, err) }(time.Now())

	var envelope struct {
		Products json.RawMessage `json:"products"`
	}
	if err := c.getJSON(ctx, "/api/v1/products", &envelope); err != nil {
		return nil, err
	}

	var products []string
	if len(envelope.Products) == 0 || json.Unmarshal(envelope.Products, &products) != nil {
		return []string{}, nil
	}
	if products == nil {
		products = []string{}
	}
	return products, nil
}

// Versions returns the per-region build histories of product.
func (c *Client) Versions(ctx context.Context, product string) (_ Histories, err error) {
	defer func(start time.Time) { observability.ObserveBackend("versions", start, err) }(time.Now())

	var rows []versionRow
	if err := c.getJSON(ctx, "/api/v1/versions/"+url.PathEscape(product), &rows); err != nil {
		return Histories{}, err
	}
	return groupByRegion(rows), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch %s: %w: %d", path, ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
