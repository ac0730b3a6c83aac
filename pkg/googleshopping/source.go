package googleshopping

import (
	"context"
	"math"

	"github.com/dealscope/dealscope/internal/model"
)

// Source exposes shopping search results as a price-quote source.
// Results without a recognizable price are dropped.
type Source struct {
	client     Client
	maxResults int
}

// NewSource wraps a client for use in the price stage.
func NewSource(client Client) *Source {
	return &Source{client: client, maxResults: maxPerRequest}
}

func (s *Source) Name() string { return "google_shopping" }

func (s *Source) Quotes(ctx context.Context, term string) ([]model.PriceQuote, error) {
	results, err := s.client.Search(ctx, term, s.maxResults)
	if err != nil {
		return nil, err
	}

	quotes := make([]model.PriceQuote, 0, len(results))
	for _, r := range results {
		price := ExtractPrice(r.Snippet + " " + r.Title)
		if price <= 0 {
			continue
		}
		price = math.Round(price*100) / 100
		quotes = append(quotes, model.PriceQuote{
			Source:      ExtractRetailer(r.Link, r.DisplayLink),
			Price:       price,
			TotalCost:   price,
			Currency:    "USD",
			ProductID:   r.CacheID,
			ProductName: r.Title,
			URL:         r.Link,
		})
	}
	return quotes, nil
}
