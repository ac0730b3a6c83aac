package scoring

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dealscope/dealscope/internal/model"
)

var reasonPrinter = message.NewPrinter(language.English)

// Rating and review-volume tiers for reason clauses.
const (
	excellentRating      = 4.5
	goodRating           = 4.0
	highlyReviewedCount  = 100
	wellReviewedCount    = 50
	competitiveThreshold = 1.1
)

// buildReason assembles the ordered human-readable justification for a
// recommendation. Clause order is fixed: price, sentiment, rating tier,
// review volume. A candidate with no qualifying clause gets the generic
// fallback.
func buildReason(p model.Product, priceData *model.ProductPriceData, reviewData *model.ReviewAnalysis) string {
	var clauses []string

	if priceData != nil {
		switch {
		case priceData.BestDeal.Source == p.Source:
			clauses = append(clauses, reasonPrinter.Sprintf("Best price available at $%.2f", priceData.BestDeal.TotalCost))
		case priceData.Comparison.TotalCost < p.Price*competitiveThreshold:
			clauses = append(clauses, reasonPrinter.Sprintf("Competitive pricing at $%.2f", priceData.Comparison.TotalCost))
		}
	}

	if reviewData != nil {
		switch reviewData.Summary.OverallSentiment {
		case model.SentimentPositive:
			clauses = append(clauses, reasonPrinter.Sprintf("Highly positive reviews (%.1f%% positive)", reviewData.Summary.PositivePercent))
		case model.SentimentNegative:
			clauses = append(clauses, "Mixed reviews")
		}
	}

	switch rating := p.RatingOrZero(); {
	case rating >= excellentRating:
		clauses = append(clauses, reasonPrinter.Sprintf("Excellent rating (%.1f/5.0)", rating))
	case rating >= goodRating:
		clauses = append(clauses, reasonPrinter.Sprintf("Good rating (%.1f/5.0)", rating))
	}

	switch count := p.ReviewCountOrZero(); {
	case count > highlyReviewedCount:
		clauses = append(clauses, reasonPrinter.Sprintf("Highly reviewed (%d reviews)", count))
	case count > wellReviewedCount:
		clauses = append(clauses, reasonPrinter.Sprintf("Well-reviewed (%d reviews)", count))
	}

	if len(clauses) == 0 {
		return "Meets basic requirements"
	}
	return strings.Join(clauses, "; ")
}
