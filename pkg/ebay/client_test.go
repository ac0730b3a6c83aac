package ebay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/model"
)

const sampleResponse = `<?xml version="1.0" encoding="UTF-8"?>
<findItemsByKeywordsResponse xmlns="http://www.ebay.com/marketplace/search/v1/services">
  <ack>Success</ack>
  <searchResult count="2">
    <item>
      <itemId>110051</itemId>
      <title>Wireless Headphones Pro</title>
      <viewItemURL>https://www.ebay.com/itm/110051</viewItemURL>
      <galleryURL>https://thumbs.ebay.com/110051.jpg</galleryURL>
      <sellingStatus>
        <currentPrice currencyId="USD">49.99</currentPrice>
      </sellingStatus>
      <shippingInfo>
        <shippingServiceCost currencyId="USD">4.99</shippingServiceCost>
      </shippingInfo>
      <condition>
        <conditionDisplayName>New</conditionDisplayName>
      </condition>
    </item>
    <item>
      <itemId>110052</itemId>
      <title>Wireless Headphones Basic</title>
      <viewItemURL>https://www.ebay.com/itm/110052</viewItemURL>
      <sellingStatus>
        <currentPrice currencyId="USD">29.99</currentPrice>
      </sellingStatus>
      <condition>
        <conditionDisplayName>Used</conditionDisplayName>
      </condition>
    </item>
  </searchResult>
</findItemsByKeywordsResponse>`

func TestFindItems_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "findItemsByKeywords", q.Get("OPERATION-NAME"))
		assert.Equal(t, "test-app-id", q.Get("SECURITY-APPNAME"))
		assert.Equal(t, "wireless headphones", q.Get("keywords"))
		assert.Equal(t, "5", q.Get("paginationInput.entriesPerPage"))

		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient("test-app-id", WithBaseURL(srv.URL))
	items, err := client.FindItems(context.Background(), FindItemsRequest{
		Keywords:   "wireless headphones",
		MaxResults: 5,
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "110051", items[0].ItemID)
	assert.Equal(t, "Wireless Headphones Pro", items[0].Title)
	assert.InDelta(t, 49.99, items[0].Price, 0.001)
	assert.InDelta(t, 4.99, items[0].ShippingCost, 0.001)
	assert.Equal(t, "USD", items[0].Currency)
	assert.Equal(t, "New", items[0].Condition)

	// No shippingServiceCost element on the second item.
	assert.Zero(t, items[1].ShippingCost)
	assert.Equal(t, "Used", items[1].Condition)
}

func TestFindItems_PriceFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "MinPrice", q.Get("itemFilter(0).name"))
		assert.Equal(t, "10", q.Get("itemFilter(0).value"))
		assert.Equal(t, "MaxPrice", q.Get("itemFilter(1).name"))
		assert.Equal(t, "50", q.Get("itemFilter(1).value"))

		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	minPrice, maxPrice := 10.0, 50.0
	client := NewClient("test-app-id", WithBaseURL(srv.URL))
	_, err := client.FindItems(context.Background(), FindItemsRequest{
		Keywords:   "headphones",
		MaxResults: 5,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	})
	require.NoError(t, err)
}

func TestFindItems_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<findItemsByKeywordsResponse xmlns="http://www.ebay.com/marketplace/search/v1/services">
  <ack>Failure</ack>
  <errorMessage><error><message>Invalid app ID</message></error></errorMessage>
</findItemsByKeywordsResponse>`))
	}))
	defer srv.Close()

	client := NewClient("bad-app-id", WithBaseURL(srv.URL))
	items, err := client.FindItems(context.Background(), FindItemsRequest{Keywords: "headphones", MaxResults: 5})

	require.Error(t, err)
	assert.Nil(t, items)
	assert.Contains(t, err.Error(), "Invalid app ID")
}

func TestFindItems_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient("test-app-id", WithBaseURL(srv.URL), WithRateLimit(1000)).(*httpClient)
	client.retry.InitialBackoff = 1
	client.retry.JitterFraction = 0

	items, err := client.FindItems(context.Background(), FindItemsRequest{Keywords: "headphones", MaxResults: 5})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFindItems_BadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient("test-app-id", WithBaseURL(srv.URL))
	_, err := client.FindItems(context.Background(), FindItemsRequest{Keywords: "headphones", MaxResults: 5})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdapterSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	adapter := NewAdapter(NewClient("test-app-id", WithBaseURL(srv.URL)))
	assert.Equal(t, "ebay", adapter.Name())

	products, err := adapter.Search(context.Background(), "wireless headphones", 5, model.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "110051", products[0].ID)
	assert.Equal(t, "ebay", products[0].Source)
	assert.InDelta(t, 54.98, products[0].TotalCost, 0.001)
	assert.Nil(t, products[0].Rating)
	assert.Nil(t, products[0].ReviewCount)
}
