package model

import "time"

// Trend classifies the direction of a price series within the retention
// window, based on the oldest-vs-newest comparison.
type Trend string

const (
	TrendNoData       Trend = "no_data"
	TrendInsufficient Trend = "insufficient_data"
	TrendIncreasing   Trend = "increasing"
	TrendDecreasing   Trend = "decreasing"
	TrendStable       Trend = "stable"
)

// TrendResult is the outcome of a trend calculation for one
// (product, source) series.
type TrendResult struct {
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
	OldestPrice   float64 `json:"oldest_price,omitempty"`
	NewestPrice   float64 `json:"newest_price,omitempty"`
	DataPoints    int     `json:"data_points,omitempty"`
}

// PriceQuote is one price observation for a product from one source at one
// time. Never mutated after ingestion; only retained or evicted by age.
type PriceQuote struct {
	ProductKey   string    `json:"product_key"`
	Source       string    `json:"source"`
	Price        float64   `json:"price"`
	ShippingCost float64   `json:"shipping_cost"`
	TotalCost    float64   `json:"total_cost"`
	Currency     string    `json:"currency"`
	ProductID    string    `json:"product_id,omitempty"`
	ProductName  string    `json:"product_name,omitempty"`
	URL          string    `json:"url,omitempty"`
	Availability string    `json:"availability,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Rating       *float64  `json:"rating,omitempty"`
	ReviewCount  *int      `json:"review_count,omitempty"`
}

// PriceComparison is the best (lowest total cost) quote from one source,
// with the number of options that source offered.
type PriceComparison struct {
	Source       string       `json:"source"`
	Price        float64      `json:"price"`
	ShippingCost float64      `json:"shipping_cost"`
	TotalCost    float64      `json:"total_cost"`
	Currency     string       `json:"currency"`
	ProductID    string       `json:"product_id,omitempty"`
	ProductName  string       `json:"product_name"`
	URL          string       `json:"url,omitempty"`
	Availability string       `json:"availability"`
	LastUpdated  time.Time    `json:"last_updated"`
	OptionsCount int          `json:"options_count"`
	Rating       *float64     `json:"rating,omitempty"`
	ReviewCount  *int         `json:"review_count,omitempty"`
	Trend        *TrendResult `json:"price_trend,omitempty"`
}

// BestDeal identifies the globally cheapest comparison and the savings
// against the most expensive one.
type BestDeal struct {
	Source         string  `json:"source"`
	Price          float64 `json:"price"`
	ShippingCost   float64 `json:"shipping_cost"`
	TotalCost      float64 `json:"total_cost"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percent"`
	URL            string  `json:"url,omitempty"`
	ProductName    string  `json:"product_name"`
}

// PriceReport is the output of the price stage for one product query.
type PriceReport struct {
	ProductName  string            `json:"product_name"`
	Comparisons  []PriceComparison `json:"comparisons"`
	BestDeal     BestDeal          `json:"best_deal"`
	ComparedAt   time.Time         `json:"comparison_date"`
	TotalSources int               `json:"total_sources"`
}

// ProductPriceData is the slice of a PriceReport relevant to one product:
// the comparison for its source plus the report-wide best deal.
type ProductPriceData struct {
	Comparison PriceComparison `json:"comparison"`
	BestDeal   BestDeal        `json:"best_deal"`
}
