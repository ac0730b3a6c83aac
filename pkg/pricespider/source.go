package pricespider

import (
	"context"
	"math"

	"github.com/dealscope/dealscope/internal/model"
)

// Source exposes scraped listings as a price-quote source.
type Source struct {
	scraper Scraper
}

// NewSource wraps a scraper for use in the price stage.
func NewSource(scraper Scraper) *Source {
	return &Source{scraper: scraper}
}

func (s *Source) Name() string { return "pricespider" }

func (s *Source) Quotes(ctx context.Context, term string) ([]model.PriceQuote, error) {
	listings, err := s.scraper.Scrape(ctx, term)
	if err != nil {
		return nil, err
	}

	quotes := make([]model.PriceQuote, 0, len(listings))
	for _, l := range listings {
		price := round2(l.Price)
		shipping := round2(l.ShippingCost)
		quotes = append(quotes, model.PriceQuote{
			Source:       l.Retailer,
			Price:        price,
			ShippingCost: shipping,
			TotalCost:    round2(price + shipping),
			Currency:     "USD",
			URL:          l.URL,
			Availability: l.Availability,
		})
	}
	return quotes, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
