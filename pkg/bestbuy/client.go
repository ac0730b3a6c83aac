// Package bestbuy wraps the Best Buy Products API.
package bestbuy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dealscope/dealscope/internal/resilience"
)

const defaultBaseURL = "https://api.bestbuy.com/v1"

// Client performs Best Buy Products API operations.
type Client interface {
	SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error)
}

// SearchRequest describes one product search.
type SearchRequest struct {
	Query      string
	MaxResults int
	MinPrice   *float64
	MaxPrice   *float64
}

// Product is one catalog entry from the Products API.
type Product struct {
	SKU                   int     `json:"sku"`
	Name                  string  `json:"name"`
	SalePrice             float64 `json:"salePrice"`
	ShippingCost          float64 `json:"shippingCost"`
	URL                   string  `json:"url"`
	Image                 string  `json:"image"`
	CustomerReviewAverage float64 `json:"customerReviewAverage"`
	CustomerReviewCount   int     `json:"customerReviewCount"`
	OnlineAvailability    bool    `json:"onlineAvailability"`
}

type searchResponse struct {
	Products []Product `json:"products"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Best Buy Products API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("bestbuy", "search_products")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchProducts(ctx context.Context, req SearchRequest) ([]Product, error) {
	// The Products API embeds filters in the resource path:
	// /products(search=term&salePrice>=10&salePrice<=50).
	terms := []string{"search=" + req.Query}
	if req.MinPrice != nil {
		terms = append(terms, fmt.Sprintf("salePrice>=%s", formatPrice(*req.MinPrice)))
	}
	if req.MaxPrice != nil {
		terms = append(terms, fmt.Sprintf("salePrice<=%s", formatPrice(*req.MaxPrice)))
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("format", "json")
	params.Set("pageSize", strconv.Itoa(min(max(req.MaxResults, 1), 100)))
	params.Set("show", "sku,name,salePrice,shippingCost,url,image,customerReviewAverage,customerReviewCount,onlineAvailability")

	endpoint := fmt.Sprintf("%s/products(%s)?%s", c.baseURL, strings.Join(terms, "&"), params.Encode())

	body, err := resilience.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, endpoint)
	})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "bestbuy: unmarshal response")
	}
	return resp.Products, nil
}

func (c *httpClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "bestbuy: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "bestbuy: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bestbuy: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bestbuy: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("bestbuy: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
