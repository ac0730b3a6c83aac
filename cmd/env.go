package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealscope/dealscope/internal/history"
	"github.com/dealscope/dealscope/internal/pipeline"
	"github.com/dealscope/dealscope/internal/pricing"
	"github.com/dealscope/dealscope/internal/resilience"
	"github.com/dealscope/dealscope/internal/review"
	"github.com/dealscope/dealscope/internal/scoring"
	"github.com/dealscope/dealscope/internal/search"
	"github.com/dealscope/dealscope/internal/store"
	"github.com/dealscope/dealscope/pkg/bestbuy"
	"github.com/dealscope/dealscope/pkg/claude"
	"github.com/dealscope/dealscope/pkg/ebay"
	"github.com/dealscope/dealscope/pkg/googleshopping"
	"github.com/dealscope/dealscope/pkg/huggingface"
	"github.com/dealscope/dealscope/pkg/priceapi"
	"github.com/dealscope/dealscope/pkg/pricespider"
)

// initStore opens the configured run store and migrates its schema.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// searchAdapters builds one adapter per retailer with credentials
// configured.
func searchAdapters() []search.Adapter {
	var adapters []search.Adapter

	if cfg.Ebay.AppID != "" {
		client := ebay.NewClient(cfg.Ebay.AppID, ebay.WithBaseURL(cfg.Ebay.BaseURL))
		adapters = append(adapters, ebay.NewAdapter(client))
	} else {
		zap.L().Warn("ebay app ID not configured, skipping ebay search")
	}

	if cfg.BestBuy.Key != "" {
		client := bestbuy.NewClient(cfg.BestBuy.Key, bestbuy.WithBaseURL(cfg.BestBuy.BaseURL))
		adapters = append(adapters, bestbuy.NewAdapter(client))
	} else {
		zap.L().Warn("bestbuy key not configured, skipping bestbuy search")
	}

	return adapters
}

// quoteSources builds the optional secondary price-quote sources.
func quoteSources() []pricing.QuoteSource {
	var sources []pricing.QuoteSource

	if cfg.GoogleShopping.Key != "" && cfg.GoogleShopping.EngineID != "" {
		client := googleshopping.NewClient(cfg.GoogleShopping.Key, cfg.GoogleShopping.EngineID,
			googleshopping.WithBaseURL(cfg.GoogleShopping.BaseURL))
		sources = append(sources, googleshopping.NewSource(client))
	}

	if cfg.PriceAPI.Token != "" {
		client := priceapi.NewClient(cfg.PriceAPI.Token,
			priceapi.WithBaseURL(cfg.PriceAPI.BaseURL),
			priceapi.WithPollInterval(time.Duration(cfg.PriceAPI.PollSecs)*time.Second),
			priceapi.WithMaxWait(time.Duration(cfg.PriceAPI.MaxPollSecs)*time.Second))
		sources = append(sources, priceapi.NewSource(client))
	}

	if cfg.PriceSpider.BaseURL != "" {
		scraper := pricespider.NewScraper(pricespider.WithBaseURL(cfg.PriceSpider.BaseURL))
		sources = append(sources, pricespider.NewSource(scraper))
	}

	return sources
}

// classifier selects the sentiment backend from config. The keyword
// classifier needs no credentials and is the fallback.
func classifier() review.Classifier {
	switch cfg.Review.Classifier {
	case "huggingface":
		if cfg.HuggingFace.Key != "" {
			return huggingface.NewClient(cfg.HuggingFace.Key,
				huggingface.WithBaseURL(cfg.HuggingFace.BaseURL),
				huggingface.WithModel(cfg.HuggingFace.Model))
		}
		zap.L().Warn("huggingface key not configured, falling back to keyword classifier")
	case "claude":
		if cfg.Anthropic.Key != "" {
			return claude.NewClassifier(cfg.Anthropic.Key, claude.WithModel(cfg.Anthropic.Model))
		}
		zap.L().Warn("anthropic key not configured, falling back to keyword classifier")
	}
	return review.KeywordClassifier{}
}

// buildOrchestrator wires the full pipeline from config.
func buildOrchestrator(st store.Store) *pipeline.Orchestrator {
	analyzer := review.NewAnalyzer(classifier(),
		review.WithConcurrency(cfg.Review.Concurrency),
		review.WithRetry(resilience.RetryOnce(time.Duration(cfg.Review.RetryDelayMS)*time.Millisecond)),
	)

	engine := scoring.NewEngine(scoring.WithWeights(scoring.Weights{
		Price:        cfg.Scoring.PriceWeight,
		Sentiment:    cfg.Scoring.SentimentWeight,
		Rating:       cfg.Scoring.RatingWeight,
		ReviewCount:  cfg.Scoring.ReviewCountWeight,
		BudgetWeight: cfg.Scoring.BudgetWeight,
	}))

	hist := history.NewMemoryStore(
		history.WithWindow(time.Duration(cfg.History.WindowDays) * 24 * time.Hour),
	)

	opts := []pipeline.Option{
		pipeline.WithQuoteSources(quoteSources()...),
		pipeline.WithStageTimeout(time.Duration(cfg.Pipeline.StageTimeoutSecs) * time.Second),
	}
	if st != nil {
		opts = append(opts, pipeline.WithStore(st))
	}

	return pipeline.New(
		search.NewSearcher(searchAdapters()...),
		pricing.NewAggregator(hist),
		analyzer,
		engine,
		opts...,
	)
}
