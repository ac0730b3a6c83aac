package priceapi

import (
	"context"
	"math"

	"github.com/dealscope/dealscope/internal/model"
)

// Source exposes PriceAPI offers as a price-quote source.
type Source struct {
	client Client
}

// NewSource wraps a client for use in the price stage.
func NewSource(client Client) *Source {
	return &Source{client: client}
}

func (s *Source) Name() string { return "priceapi" }

func (s *Source) Quotes(ctx context.Context, term string) ([]model.PriceQuote, error) {
	offers, err := s.client.FetchOffers(ctx, term)
	if err != nil {
		return nil, err
	}

	quotes := make([]model.PriceQuote, 0, len(offers))
	for _, o := range offers {
		price := round2(float64(o.Price))
		shipping := round2(float64(o.Shipping))
		quotes = append(quotes, model.PriceQuote{
			Source:       merchantOrDefault(o.Merchant),
			Price:        price,
			ShippingCost: shipping,
			TotalCost:    round2(price + shipping),
			Currency:     o.Currency,
			ProductID:    o.ID,
			ProductName:  o.Title,
			URL:          o.Link,
			Availability: o.Availability,
		})
	}
	return quotes, nil
}

func merchantOrDefault(merchant string) string {
	if merchant == "" {
		return "Unknown"
	}
	return merchant
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
