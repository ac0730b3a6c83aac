// Package ebay wraps the eBay Finding API (findItemsByKeywords).
package ebay

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/dealscope/dealscope/internal/resilience"
)

const (
	defaultBaseURL = "https://svcs.ebay.com/services/search/FindingService/v1"
	serviceVersion = "1.0.0"
)

// Client performs eBay Finding API operations.
type Client interface {
	FindItems(ctx context.Context, req FindItemsRequest) ([]Item, error)
}

// FindItemsRequest describes one keyword search.
type FindItemsRequest struct {
	Keywords   string
	MaxResults int
	MinPrice   *float64
	MaxPrice   *float64
}

// Item is a single listing parsed from a Finding API response.
type Item struct {
	ItemID       string
	Title        string
	Price        float64
	Currency     string
	ShippingCost float64
	URL          string
	ImageURL     string
	Condition    string
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
	appID   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates an eBay Finding API client.
func NewClient(appID string, opts ...Option) Client {
	c := &httpClient{
		appID:   appID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("ebay", "find_items")
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FindItems(ctx context.Context, req FindItemsRequest) ([]Item, error) {
	params := url.Values{}
	params.Set("OPERATION-NAME", "findItemsByKeywords")
	params.Set("SERVICE-VERSION", serviceVersion)
	params.Set("SECURITY-APPNAME", c.appID)
	params.Set("RESPONSE-DATA-FORMAT", "XML")
	params.Set("REST-PAYLOAD", "")
	params.Set("keywords", req.Keywords)
	params.Set("paginationInput.entriesPerPage", strconv.Itoa(min(max(req.MaxResults, 1), 100)))

	filterIdx := 0
	if req.MinPrice != nil {
		addItemFilter(params, filterIdx, "MinPrice", *req.MinPrice)
		filterIdx++
	}
	if req.MaxPrice != nil {
		addItemFilter(params, filterIdx, "MaxPrice", *req.MaxPrice)
	}

	body, err := resilience.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, params)
	})
	if err != nil {
		return nil, err
	}

	var resp findItemsResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "ebay: unmarshal response")
	}
	if resp.Ack != "Success" && resp.Ack != "Warning" {
		return nil, eris.Errorf("ebay: api error: %s", resp.errorText())
	}

	items := make([]Item, 0, len(resp.SearchResult.Items))
	for _, it := range resp.SearchResult.Items {
		items = append(items, it.toItem())
		if len(items) >= req.MaxResults && req.MaxResults > 0 {
			break
		}
	}
	return items, nil
}

func (c *httpClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ebay: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ebay: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("ebay: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

func addItemFilter(params url.Values, idx int, name string, value float64) {
	prefix := "itemFilter(" + strconv.Itoa(idx) + ")"
	params.Set(prefix+".name", name)
	params.Set(prefix+".value", strconv.FormatFloat(value, 'f', -1, 64))
}
