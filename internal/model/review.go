package model

// SentimentLabel classifies a review text.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentResult is the classifier output for a single review text.
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
}

// Review is a single customer review, optionally tagged with a star rating.
type Review struct {
	Text   string `json:"text"`
	Rating *int   `json:"rating,omitempty"`
}

// AnalyzedReview pairs a review with its sentiment classification.
type AnalyzedReview struct {
	Review
	Sentiment SentimentResult `json:"sentiment"`
}

// SentimentSummary aggregates classifications over a batch of reviews.
type SentimentSummary struct {
	TotalReviews          int            `json:"total_reviews"`
	PositiveCount         int            `json:"positive_count"`
	NegativeCount         int            `json:"negative_count"`
	NeutralCount          int            `json:"neutral_count"`
	PositivePercent       float64        `json:"positive_percent"`
	NegativePercent       float64        `json:"negative_percent"`
	AverageSentimentScore float64        `json:"average_sentiment_score"`
	OverallSentiment      SentimentLabel `json:"overall_sentiment"`
}

// ThemeStat tallies mentions of one review theme by sentiment.
type ThemeStat struct {
	Theme            string  `json:"theme"`
	TotalMentions    int     `json:"total_mentions"`
	PositiveMentions int     `json:"positive_mentions"`
	NegativeMentions int     `json:"negative_mentions"`
	NeutralMentions  int     `json:"neutral_mentions"`
	PositivePercent  float64 `json:"positive_percent"`
	NegativePercent  float64 `json:"negative_percent"`
	SentimentRatio   float64 `json:"sentiment_ratio"`
}

// ReviewAnalysis is the output of the review stage for one product.
type ReviewAnalysis struct {
	ProductID string           `json:"product_id,omitempty"`
	Reviews   []AnalyzedReview `json:"analyzed_reviews"`
	Summary   SentimentSummary `json:"sentiment_summary"`
	Themes    []ThemeStat      `json:"themes,omitempty"`
}
