package ebay

import (
	"context"
	"math"

	"github.com/dealscope/dealscope/internal/model"
)

// Adapter exposes the Finding API client as a retailer search adapter.
// The Finding API carries no product ratings or review counts, so those
// fields stay unset.
type Adapter struct {
	client Client
}

// NewAdapter wraps an eBay client for use in the search stage.
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Name() string { return "ebay" }

func (a *Adapter) Search(ctx context.Context, term string, maxResults int, filters model.SearchFilters) ([]model.Product, error) {
	items, err := a.client.FindItems(ctx, FindItemsRequest{
		Keywords:   term,
		MaxResults: maxResults,
		MinPrice:   filters.MinPrice,
		MaxPrice:   filters.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(items))
	for _, it := range items {
		products = append(products, model.Product{
			ID:           it.ItemID,
			Name:         it.Title,
			Price:        round2(it.Price),
			ShippingCost: round2(it.ShippingCost),
			TotalCost:    round2(it.Price + it.ShippingCost),
			Currency:     it.Currency,
			Source:       a.Name(),
			URL:          it.URL,
			ImageURL:     it.ImageURL,
			Condition:    it.Condition,
		})
	}
	return products, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
