package bestbuy

import (
	"context"
	"math"
	"strconv"

	"github.com/dealscope/dealscope/internal/model"
)

// Adapter exposes the Products API client as a retailer search adapter.
type Adapter struct {
	client Client
}

// NewAdapter wraps a Best Buy client for use in the search stage.
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string { return "bestbuy" }

func (a *Adapter) Search(ctx context.Context, term string, maxResults int, filters model.SearchFilters) ([]model.Product, error) {
	items, err := a.client.SearchProducts(ctx, SearchRequest{
		Query:      term,
		MaxResults: maxResults,
		MinPrice:   filters.MinPrice,
		MaxPrice:   filters.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(items))
	for _, it := range items {
		p := model.Product{
			ID:           strconv.Itoa(it.SKU),
			Name:         it.Name,
			Price:        round2(it.SalePrice),
			ShippingCost: round2(it.ShippingCost),
			TotalCost:    round2(it.SalePrice + it.ShippingCost),
			Currency:     "USD",
			Source:       a.Name(),
			URL:          it.URL,
			ImageURL:     it.Image,
			Condition:    "New",
		}
		if it.CustomerReviewAverage > 0 {
			rating := it.CustomerReviewAverage
			p.Rating = &rating
		}
		if it.CustomerReviewCount > 0 {
			count := it.CustomerReviewCount
			p.ReviewCount = &count
		}
		products = append(products, p)
	}
	return products, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
