package model

// Product is a single product record as returned by a retailer search
// adapter. Immutable once produced; owned by the pipeline run.
type Product struct {
	ID           string   `json:"product_id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	ShippingCost float64  `json:"shipping_cost"`
	TotalCost    float64  `json:"total_cost"`
	Currency     string   `json:"currency"`
	Source       string   `json:"source"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"image_url,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
}

// RatingOrZero returns the rating, or 0 when the retailer did not supply one.
func (p Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// ReviewCountOrZero returns the review count, or 0 when absent.
func (p Product) ReviewCountOrZero() int {
	if p.ReviewCount == nil {
		return 0
	}
	return *p.ReviewCount
}

// SearchFilters restricts a retailer search by price.
type SearchFilters struct {
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// SearchResult is the output of the search stage.
type SearchResult struct {
	Products         []Product `json:"products"`
	SourcesQueried   []string  `json:"sources_queried"`
	SourcesResponded []string  `json:"sources_responded"`
}
