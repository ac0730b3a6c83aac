package pipeline

import (
	"context"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/review"
)

// Single-stage entry points. Each runs one stage in isolation with the
// same validation and classification as the full run, for composability
// and for the per-stage CLI commands and HTTP endpoints.

// SearchOnly runs the search stage by itself.
func (o *Orchestrator) SearchOnly(ctx context.Context, term string, maxResults int, sources []string, filters model.SearchFilters) (*model.SearchResult, error) {
	if term == "" {
		return nil, validationError("pipeline: search_term is required")
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	result, err := o.searcher.Search(stageCtx, term, maxResults, sources, filters)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PriceOnly searches for the term and aggregates prices, skipping
// reviews and scoring.
func (o *Orchestrator) PriceOnly(ctx context.Context, term string, maxResults int) (*model.PriceReport, error) {
	if term == "" {
		return nil, validationError("pipeline: search_term is required")
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	sr, err := o.searcher.Search(stageCtx, term, maxResults, nil, model.SearchFilters{})
	if err != nil {
		return nil, err
	}
	return o.priceStage(stageCtx, term, sr.Products)
}

// ReviewOnly analyzes a caller-supplied review corpus.
func (o *Orchestrator) ReviewOnly(ctx context.Context, reviews []model.Review) (*model.ReviewAnalysis, error) {
	if len(reviews) == 0 {
		return nil, validationError("pipeline: reviews are required")
	}
	stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	return o.analyzer.Analyze(stageCtx, "", reviews, review.Options{ExtractThemes: true})
}

// ScoreOnly ranks caller-supplied products with optional price and
// review data.
func (o *Orchestrator) ScoreOnly(
	products []model.Product,
	priceData map[string]model.ProductPriceData,
	reviewData map[string]*model.ReviewAnalysis,
	prefs model.Preferences,
) ([]model.Recommendation, model.Summary, error) {
	if len(products) == 0 {
		return nil, model.Summary{}, validationError("pipeline: products are required")
	}
	return o.engine.Recommend(products, priceData, reviewData, prefs)
}

// QuoteSources exposes the configured secondary quote sources, used by
// the price command to report what will be queried.
func (o *Orchestrator) QuoteSources() []string {
	names := make([]string, len(o.quoteSources))
	for i, src := range o.quoteSources {
		names[i] = src.Name()
	}
	return names
}
