// Package scoring converts heterogeneous product signals into a single
// bounded recommendation score, ranks candidates, and explains each pick.
package scoring

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealscope/dealscope/internal/model"
)

// ErrNoProducts indicates a scoring call with an empty candidate set.
var ErrNoProducts = eris.New("scoring: no products provided")

// overBudgetPenalty is subtracted from the running score when the
// candidate's total cost exceeds the user's budget.
const overBudgetPenalty = 0.2

// defaultMaxRecommendations caps the ranked output length.
const defaultMaxRecommendations = 5

// Weights controls the relative contribution of each signal.
type Weights struct {
	Price       float64
	Sentiment   float64
	Rating      float64
	ReviewCount float64

	// BudgetWeight scales the multiplicative within-budget bonus.
	BudgetWeight float64
}

// DefaultWeights returns the standard signal weighting.
func DefaultWeights() Weights {
	return Weights{
		Price:        0.3,
		Sentiment:    0.4,
		Rating:       0.2,
		ReviewCount:  0.1,
		BudgetWeight: 0.5,
	}
}

// Engine scores and ranks product candidates.
type Engine struct {
	weights Weights
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWeights overrides the default signal weights.
func WithWeights(w Weights) EngineOption {
	return func(e *Engine) {
		e.weights = w
	}
}

// NewEngine creates an Engine with the default weights.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Recommend scores every candidate and returns the ranked top picks.
// Products below the minimum rating are excluded before scoring. Ties
// keep the candidates' original order.
func (e *Engine) Recommend(
	products []model.Product,
	priceData map[string]model.ProductPriceData,
	reviewData map[string]*model.ReviewAnalysis,
	prefs model.Preferences,
) ([]model.Recommendation, model.Summary, error) {
	if len(products) == 0 {
		return nil, model.Summary{}, ErrNoProducts
	}

	zap.L().Info("scoring: ranking candidates",
		zap.Int("products", len(products)),
		zap.Float64("min_rating", prefs.MinRating),
	)

	var scored []model.Recommendation
	for _, p := range products {
		if p.RatingOrZero() < prefs.MinRating {
			continue
		}

		price := lookupPrice(priceData, p)
		reviews := lookupReviews(reviewData, p)

		score := e.Score(p, price, reviews, prefs)
		scored = append(scored, model.Recommendation{
			Product:    p,
			Score:      round3(score),
			Reason:     buildReason(p, price, reviews),
			PriceData:  price,
			ReviewData: reviews,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit := prefs.MaxRecommendations
	if limit <= 0 {
		limit = defaultMaxRecommendations
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, buildSummary(scored), nil
}

// Score computes the bounded recommendation score for one candidate.
// priceData and reviewData may be nil; each absent signal simply
// contributes nothing.
func (e *Engine) Score(
	p model.Product,
	priceData *model.ProductPriceData,
	reviewData *model.ReviewAnalysis,
	prefs model.Preferences,
) float64 {
	var score float64
	withinBudget := false

	if priceData != nil {
		cost := priceData.Comparison.TotalCost
		if cost == 0 {
			cost = p.Price
		}
		budget := math.Inf(1)
		if prefs.Budget != nil {
			budget = *prefs.Budget
		}
		if cost <= budget {
			withinBudget = true
			score += e.weights.Price * priceTerm(cost, budget, prefs.MaxPrice)
		} else {
			score -= overBudgetPenalty
		}
	}

	if reviewData != nil {
		summary := reviewData.Summary
		sentiment := (summary.AverageSentimentScore + summary.PositivePercent/100) / 2
		score += e.weights.Sentiment * sentiment
	}

	if rating := p.RatingOrZero(); rating > 0 {
		score += e.weights.Rating * (rating / 5.0)
	}

	if count := p.ReviewCountOrZero(); count > 0 {
		volume := math.Min(math.Log10(float64(count)+1)/3.0, 1.0)
		score += e.weights.ReviewCount * volume
	}

	if priceData != nil && withinBudget {
		score *= 1.0 + e.weights.BudgetWeight
	}

	return math.Max(0, math.Min(1, score))
}

// priceTerm maps a within-budget cost onto [0,1], cheaper scoring higher.
// The normalization ceiling is max_price when set, otherwise budget*1.5.
// With neither bound there is no meaningful ceiling; the term is a flat
// mid-range 0.5.
func priceTerm(cost, budget float64, maxPrice *float64) float64 {
	ceiling := math.Inf(1)
	switch {
	case maxPrice != nil && *maxPrice > 0:
		ceiling = *maxPrice
	case !math.IsInf(budget, 1):
		ceiling = budget * 1.5
	}
	if math.IsInf(ceiling, 1) {
		return 0.5
	}
	if ceiling <= 0 {
		return 0.5
	}
	normalized := cost / ceiling
	return clamp01(1 - normalized)
}

func lookupPrice(priceData map[string]model.ProductPriceData, p model.Product) *model.ProductPriceData {
	if priceData == nil {
		return nil
	}
	if data, ok := priceData[p.ID]; ok {
		return &data
	}
	if data, ok := priceData[p.Name]; ok {
		return &data
	}
	return nil
}

func lookupReviews(reviewData map[string]*model.ReviewAnalysis, p model.Product) *model.ReviewAnalysis {
	if reviewData == nil {
		return nil
	}
	if analysis, ok := reviewData[p.ID]; ok {
		return analysis
	}
	return reviewData[p.Name]
}

func buildSummary(recs []model.Recommendation) model.Summary {
	if len(recs) == 0 {
		return model.Summary{Message: "No products met the criteria"}
	}

	var totalScore float64
	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	for _, rec := range recs {
		totalScore += rec.Score
		price := rec.Product.Price
		if rec.PriceData != nil && rec.PriceData.Comparison.TotalCost > 0 {
			price = rec.PriceData.Comparison.TotalCost
		}
		minPrice = math.Min(minPrice, price)
		maxPrice = math.Max(maxPrice, price)
	}

	top := recs[0]
	return model.Summary{
		TotalRecommendations: len(recs),
		AverageScore:         round3(totalScore / float64(len(recs))),
		PriceRange: model.PriceRange{
			Min: round2(minPrice),
			Max: round2(maxPrice),
		},
		TopPick: &model.TopPick{
			Name:   top.Product.Name,
			Score:  top.Score,
			Reason: top.Reason,
		},
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
