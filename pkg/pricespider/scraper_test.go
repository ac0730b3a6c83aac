package pricespider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<h1>Price comparison</h1>
<table class="price-table">
  <tr><th>Retailer</th><th>Price</th><th>Shipping</th><th>Availability</th></tr>
  <tr>
    <td>Walmart</td><td>$189.00</td><td>$5.99</td><td>In Stock</td>
    <td><a href="https://walmart.com/headphones">Buy</a></td>
  </tr>
  <tr>
    <td>Target</td><td>$1,199.50</td><td>Free</td><td>Backordered</td>
  </tr>
  <tr>
    <td>Sketchy Deals</td><td>Call for price</td><td></td><td></td>
  </tr>
</table>
</body></html>`

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "wireless headphones", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	scraper := NewScraper(WithBaseURL(srv.URL))
	listings, err := scraper.Scrape(context.Background(), "wireless headphones")

	require.NoError(t, err)
	// The row without a parsable price is skipped.
	require.Len(t, listings, 2)

	assert.Equal(t, "Walmart", listings[0].Retailer)
	assert.InDelta(t, 189.0, listings[0].Price, 0.001)
	assert.InDelta(t, 5.99, listings[0].ShippingCost, 0.001)
	assert.Equal(t, "https://walmart.com/headphones", listings[0].URL)

	assert.Equal(t, "Target", listings[1].Retailer)
	assert.InDelta(t, 1199.5, listings[1].Price, 0.001)
	assert.Zero(t, listings[1].ShippingCost)
	assert.Equal(t, "Backordered", listings[1].Availability)
}

func TestScrape_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	scraper := NewScraper(WithBaseURL(srv.URL))
	_, err := scraper.Scrape(context.Background(), "headphones")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSourceQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	source := NewSource(NewScraper(WithBaseURL(srv.URL)))
	assert.Equal(t, "pricespider", source.Name())

	quotes, err := source.Quotes(context.Background(), "wireless headphones")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "Walmart", quotes[0].Source)
	assert.InDelta(t, 194.99, quotes[0].TotalCost, 0.001)
	assert.Equal(t, "Backordered", quotes[1].Availability)
}
