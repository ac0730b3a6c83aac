// Package search fans a product query out across registered retailer
// adapters and merges the results into a single uniform product list.
package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealscope/dealscope/internal/model"
)

// ErrEmptyQuery indicates a search call without a search term.
var ErrEmptyQuery = eris.New("search: empty search term")

// DefaultMaxResults is the per-source result cap when the caller does
// not specify one.
const DefaultMaxResults = 5

// Adapter maps a query to uniform product records for one retailer.
// Implementations are called concurrently and must be safe for that.
type Adapter interface {
	Name() string
	Search(ctx context.Context, term string, maxResults int, filters model.SearchFilters) ([]model.Product, error)
}

// Searcher runs a query across a fixed set of retailer adapters.
type Searcher struct {
	adapters []Adapter
}

// NewSearcher creates a Searcher over the given adapters. Adapter order
// determines result concatenation order.
func NewSearcher(adapters ...Adapter) *Searcher {
	return &Searcher{adapters: adapters}
}

// Sources lists the registered adapter names in order.
func (s *Searcher) Sources() []string {
	names := make([]string, len(s.adapters))
	for i, a := range s.adapters {
		names[i] = a.Name()
	}
	return names
}

// Search queries every selected adapter concurrently and joins the
// per-adapter results in registration order. A failing adapter is
// logged and skipped; it is absent from SourcesResponded. Search fails
// only on invalid input, never because a retailer is down.
func (s *Searcher) Search(ctx context.Context, term string, maxResults int, sources []string, filters model.SearchFilters) (*model.SearchResult, error) {
	if term == "" {
		return nil, ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	selected := s.selectAdapters(sources)
	queried := make([]string, len(selected))
	for i, a := range selected {
		queried[i] = a.Name()
	}

	zap.L().Info("search: querying retailers",
		zap.String("term", term),
		zap.Strings("sources", queried),
		zap.Int("max_results", maxResults),
	)

	// Indexed by adapter so the join is deterministic regardless of
	// completion order.
	resultSets := make([][]model.Product, len(selected))
	responded := make([]bool, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range selected {
		g.Go(func() error {
			products, err := adapter.Search(gctx, term, maxResults, filters)
			if err != nil {
				zap.L().Warn("search: source failed",
					zap.String("source", adapter.Name()),
					zap.Error(err),
				)
				return nil
			}
			resultSets[i] = products
			responded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "search: canceled")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "search: canceled")
	}

	result := &model.SearchResult{SourcesQueried: queried}
	for i, products := range resultSets {
		if responded[i] {
			result.SourcesResponded = append(result.SourcesResponded, selected[i].Name())
		}
		result.Products = append(result.Products, products...)
	}

	zap.L().Info("search: complete",
		zap.String("term", term),
		zap.Int("products", len(result.Products)),
		zap.Int("sources_responded", len(result.SourcesResponded)),
	)

	return result, nil
}

// selectAdapters filters the registered adapters down to the requested
// source names. An empty selection means all adapters.
func (s *Searcher) selectAdapters(sources []string) []Adapter {
	if len(sources) == 0 {
		return s.adapters
	}
	wanted := make(map[string]bool, len(sources))
	for _, name := range sources {
		wanted[name] = true
	}
	var selected []Adapter
	for _, a := range s.adapters {
		if wanted[a.Name()] {
			selected = append(selected, a)
		}
	}
	return selected
}
