// Package pipeline orchestrates the recommendation run: search, then
// price and review aggregation in parallel, then scoring.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/pricing"
	"github.com/dealscope/dealscope/internal/review"
	"github.com/dealscope/dealscope/internal/scoring"
	"github.com/dealscope/dealscope/internal/search"
	"github.com/dealscope/dealscope/internal/store"
)

// DefaultStageTimeout bounds each external stage of a run.
const DefaultStageTimeout = 30 * time.Second

// Orchestrator owns the lifetime of one pipeline run's data and drives
// the stages in order. Search and score failures are terminal; price
// and review failures degrade their stage to an empty map.
type Orchestrator struct {
	searcher     *search.Searcher
	aggregator   *pricing.Aggregator
	analyzer     *review.Analyzer
	engine       *scoring.Engine
	reviewSource review.Source
	quoteSources []pricing.QuoteSource
	store        store.Store
	stageTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore persists run and stage records to the given store.
func WithStore(st store.Store) Option {
	return func(o *Orchestrator) {
		o.store = st
	}
}

// WithQuoteSources adds secondary price-quote sources to the price stage.
func WithQuoteSources(sources ...pricing.QuoteSource) Option {
	return func(o *Orchestrator) {
		o.quoteSources = append(o.quoteSources, sources...)
	}
}

// WithReviewSource replaces the default rating-tier review synthesis.
func WithReviewSource(src review.Source) Option {
	return func(o *Orchestrator) {
		o.reviewSource = src
	}
}

// WithStageTimeout overrides the per-stage timeout.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stageTimeout = d
		}
	}
}

// New creates an Orchestrator over the given stage components.
func New(
	searcher *search.Searcher,
	aggregator *pricing.Aggregator,
	analyzer *review.Analyzer,
	engine *scoring.Engine,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		searcher:     searcher,
		aggregator:   aggregator,
		analyzer:     analyzer,
		engine:       engine,
		reviewSource: review.RatingTierSource{},
		stageTimeout: DefaultStageTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline for one query. It always returns a
// structured result with an explicit success flag; errors never
// propagate past the pipeline boundary.
func (o *Orchestrator) Run(ctx context.Context, query model.PipelineQuery) *model.PipelineResult {
	log := zap.L().With(zap.String("search_term", query.SearchTerm))
	log.Info("pipeline: starting run")

	result := &model.PipelineResult{
		Stages:          make(map[string]model.StageResult),
		Recommendations: []model.Recommendation{},
	}

	if query.SearchTerm == "" {
		result.Error = "search_term is required"
		return result
	}

	var run *model.Run
	if o.store != nil {
		created, err := o.store.CreateRun(ctx, query)
		if err != nil {
			log.Warn("pipeline: failed to create run record", zap.Error(err))
		} else {
			run = created
			result.RunID = run.ID
		}
	}

	setStatus := func(status model.RunStatus) {
		if run == nil {
			return
		}
		if err := o.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
			log.Warn("pipeline: failed to update status", zap.Error(err))
		}
	}

	// Stage tracking helper with mutex for the parallel stages.
	var stagesMu sync.Mutex
	trackStage := func(name string, fn func() (*model.StageResult, error)) *model.StageResult {
		var stageID string
		if run != nil {
			id, err := o.store.CreateStage(ctx, run.ID, name)
			if err != nil {
				log.Warn("pipeline: failed to create stage", zap.String("stage", name), zap.Error(err))
			} else {
				stageID = id
			}
		}

		start := time.Now()
		stageResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if stageResult == nil {
			stageResult = &model.StageResult{}
		}
		stageResult.Name = name
		stageResult.Duration = duration

		if fnErr != nil {
			stageResult.Status = model.StageStatusFailed
			stageResult.Error = fnErr.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			if stageResult.Status == "" {
				stageResult.Status = model.StageStatusComplete
			}
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if stageID != "" {
			if err := o.store.CompleteStage(ctx, stageID, stageResult); err != nil {
				log.Warn("pipeline: failed to complete stage", zap.String("stage", name), zap.Error(err))
			}
		}
		stagesMu.Lock()
		result.Stages[name] = *stageResult
		stagesMu.Unlock()
		return stageResult
	}

	finish := func() *model.PipelineResult {
		if run != nil {
			o.persistResult(ctx, run.ID, result)
		}
		return result
	}

	// ===== SEARCH (terminal on failure) =====
	setStatus(model.RunStatusSearching)

	var products []model.Product
	searchStage := trackStage(model.StageSearch, func() (*model.StageResult, error) {
		stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()

		sr, err := o.searcher.Search(stageCtx, query.SearchTerm, query.MaxResults, query.Sources, query.Filters)
		if err != nil {
			return nil, err
		}
		if len(sr.Products) == 0 {
			return nil, newError(KindNoData, eris.New("pipeline: no products found"))
		}
		products = sr.Products
		return &model.StageResult{
			Metadata: map[string]any{
				"products_found":    len(sr.Products),
				"sources_queried":   sr.SourcesQueried,
				"sources_responded": sr.SourcesResponded,
			},
		}, nil
	})
	if searchStage.Status == model.StageStatusFailed {
		result.Error = fmt.Sprintf("search failed: %s", searchStage.Error)
		return finish()
	}

	// ===== PRICE and REVIEW (parallel, independently degradable) =====
	setStatus(model.RunStatusPricing)

	var priceMap map[string]model.ProductPriceData
	var reviewMap map[string]*model.ReviewAnalysis

	g := new(errgroup.Group)

	if query.IncludePrices {
		g.Go(func() error {
			trackStage(model.StagePrice, func() (*model.StageResult, error) {
				stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
				defer cancel()

				report, err := o.priceStage(stageCtx, query.SearchTerm, products)
				if err != nil {
					return nil, err
				}
				priceMap = pricing.MapByProduct(report)
				return &model.StageResult{
					Metadata: map[string]any{
						"sources_compared": report.TotalSources,
						"best_deal_source": report.BestDeal.Source,
					},
				}, nil
			})
			return nil
		})
	} else {
		trackStage(model.StagePrice, skippedStage)
	}

	if query.IncludeReviews {
		g.Go(func() error {
			trackStage(model.StageReview, func() (*model.StageResult, error) {
				stageCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
				defer cancel()

				analyses, err := o.reviewStage(stageCtx, products)
				if err != nil {
					return nil, err
				}
				reviewMap = analyses
				return &model.StageResult{
					Metadata: map[string]any{
						"products_analyzed": len(analyses),
					},
				}, nil
			})
			return nil
		})
	} else {
		trackStage(model.StageReview, skippedStage)
	}

	_ = g.Wait()

	// ===== SCORE (terminal on failure) =====
	setStatus(model.RunStatusScoring)

	scoreStage := trackStage(model.StageScore, func() (*model.StageResult, error) {
		recs, summary, err := o.engine.Recommend(products, priceMap, reviewMap, query.Preferences)
		if err != nil {
			return nil, newError(KindAborted, err)
		}
		summary.TotalProductsFound = len(products)
		summary.PriceComparisonsCount = len(priceMap)
		summary.ReviewAnalysesCount = len(reviewMap)
		result.Recommendations = recs
		result.Summary = summary
		return &model.StageResult{
			Metadata: map[string]any{
				"recommendations": len(recs),
			},
		}, nil
	})
	if scoreStage.Status == model.StageStatusFailed {
		result.Error = fmt.Sprintf("scoring failed: %s", scoreStage.Error)
		return finish()
	}

	result.Success = true
	log.Info("pipeline: run complete",
		zap.Int("recommendations", len(result.Recommendations)),
	)
	return finish()
}

// skippedStage records a stage the caller toggled off.
func skippedStage() (*model.StageResult, error) {
	return &model.StageResult{Status: model.StageStatusSkipped}, nil
}

// priceStage merges the search results' own prices with any configured
// secondary quote sources.
func (o *Orchestrator) priceStage(ctx context.Context, term string, products []model.Product) (*model.PriceReport, error) {
	quoteSets := [][]model.PriceQuote{pricing.QuotesFromProducts(term, products)}
	quoteSets = append(quoteSets, pricing.CollectQuotes(ctx, o.quoteSources, term)...)

	report, err := o.aggregator.Aggregate(term, quoteSets, pricing.Options{IncludeTrends: true})
	if err != nil {
		return nil, newError(KindNoData, err)
	}
	return report, nil
}

// reviewStage obtains a review corpus per product and analyzes each
// concurrently. A failing product is absorbed; only an entirely empty
// outcome fails the stage.
func (o *Orchestrator) reviewStage(ctx context.Context, products []model.Product) (map[string]*model.ReviewAnalysis, error) {
	analyses := make([]*model.ReviewAnalysis, len(products))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range products {
		if p.ID == "" {
			continue
		}
		g.Go(func() error {
			reviews, err := o.reviewSource.Reviews(gctx, p)
			if err != nil || len(reviews) == 0 {
				zap.L().Warn("pipeline: no reviews for product",
					zap.String("product_id", p.ID),
					zap.Error(err),
				)
				return nil
			}
			analysis, err := o.analyzer.Analyze(gctx, p.ID, reviews, review.Options{ExtractThemes: true})
			if err != nil {
				zap.L().Warn("pipeline: review analysis failed",
					zap.String("product_id", p.ID),
					zap.Error(err),
				)
				return nil
			}
			analyses[i] = analysis
			return nil
		})
	}
	_ = g.Wait()

	byProduct := make(map[string]*model.ReviewAnalysis)
	for i, analysis := range analyses {
		if analysis != nil {
			byProduct[products[i].ID] = analysis
		}
	}
	if len(byProduct) == 0 {
		return nil, newError(KindNoData, eris.New("pipeline: no reviews analyzed"))
	}
	return byProduct, nil
}

// persistResult writes the final run record; failures are logged only.
func (o *Orchestrator) persistResult(ctx context.Context, runID string, result *model.PipelineResult) {
	stages := make([]model.StageResult, 0, len(result.Stages))
	for _, name := range []string{model.StageSearch, model.StagePrice, model.StageReview, model.StageScore} {
		if sr, ok := result.Stages[name]; ok {
			stages = append(stages, sr)
		}
	}
	runResult := &model.RunResult{
		Success:         result.Success,
		Recommendations: result.Recommendations,
		Summary:         result.Summary,
		Stages:          stages,
		Error:           result.Error,
	}
	if err := o.store.UpdateRunResult(ctx, runID, runResult); err != nil {
		zap.L().Warn("pipeline: failed to persist run result",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
}
