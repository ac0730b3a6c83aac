package model

// Preferences holds the user's budget and filtering preferences.
type Preferences struct {
	// Budget is the upper bound the user wants to spend. Nil means no limit.
	Budget *float64 `json:"budget,omitempty"`
	// MaxPrice is the normalization ceiling for the price score.
	// Defaults to Budget*1.5 when unset.
	MaxPrice *float64 `json:"max_price,omitempty"`
	// MinRating excludes products rated below it before scoring.
	MinRating float64 `json:"min_rating,omitempty"`
	// MaxRecommendations caps the result list. Defaults to 5.
	MaxRecommendations int `json:"max_recommendations,omitempty"`
}

// Recommendation is one scored, ranked product with its supporting data.
type Recommendation struct {
	Product    Product           `json:"product"`
	Score      float64           `json:"score"`
	Reason     string            `json:"reason"`
	PriceData  *ProductPriceData `json:"price_data,omitempty"`
	ReviewData *ReviewAnalysis   `json:"review_data,omitempty"`
}

// PriceRange is the min/max total cost across a recommendation list.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TopPick is a snapshot of the highest-ranked recommendation.
type TopPick struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Summary describes a completed recommendation run.
type Summary struct {
	TotalRecommendations  int        `json:"total_recommendations"`
	AverageScore          float64    `json:"average_score,omitempty"`
	PriceRange            PriceRange `json:"price_range"`
	TopPick               *TopPick   `json:"top_recommendation,omitempty"`
	TotalProductsFound    int        `json:"total_products_found,omitempty"`
	PriceComparisonsCount int        `json:"price_comparisons_count,omitempty"`
	ReviewAnalysesCount   int        `json:"review_analyses_count,omitempty"`
	Message               string     `json:"message,omitempty"`
}
