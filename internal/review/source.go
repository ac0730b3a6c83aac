package review

import (
	"context"

	"github.com/dealscope/dealscope/internal/model"
)

// Source supplies the reviews to analyze for a product. The pipeline
// treats review acquisition as a swappable capability so a real ingestion
// backend can replace the rating-derived placeholder without touching the
// analysis path.
type Source interface {
	Reviews(ctx context.Context, product model.Product) ([]model.Review, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, product model.Product) ([]model.Review, error)

func (f SourceFunc) Reviews(ctx context.Context, product model.Product) ([]model.Review, error) {
	return f(ctx, product)
}

// RatingTierSource synthesizes a canned review set from the product's
// star rating. Products without a rating are treated as 4.0. This is a
// stand-in until retailer review feeds are wired up.
type RatingTierSource struct{}

func (RatingTierSource) Reviews(_ context.Context, product model.Product) ([]model.Review, error) {
	rating := 4.0
	if product.Rating != nil {
		rating = *product.Rating
	}

	switch {
	case rating >= 4.5:
		return cannedReviews([]tierReview{
			{"Excellent product! Highly recommend!", 5},
			{"Great quality and fast shipping. Love it!", 5},
			{"Amazing value for money. Very satisfied!", 5},
			{"Perfect! Exceeded my expectations.", 5},
			{"Good product, works as expected.", 4},
		}), nil
	case rating >= 4.0:
		return cannedReviews([]tierReview{
			{"Good product, worth the price.", 4},
			{"Decent quality, works fine.", 4},
			{"Nice product but could be better.", 3},
			{"Satisfied with the purchase.", 4},
			{"It's okay, nothing special.", 3},
		}), nil
	default:
		return cannedReviews([]tierReview{
			{"Not great quality, disappointed.", 2},
			{"Poor build quality, broke quickly.", 2},
			{"Not worth the money.", 2},
			{"Terrible product, avoid this.", 1},
			{"Very disappointed with this purchase.", 2},
		}), nil
	}
}

type tierReview struct {
	text   string
	rating int
}

func cannedReviews(tier []tierReview) []model.Review {
	reviews := make([]model.Review, len(tier))
	for i, t := range tier {
		rating := t.rating
		reviews[i] = model.Review{Text: t.text, Rating: &rating}
	}
	return reviews
}
