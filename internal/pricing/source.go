package pricing

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealscope/dealscope/internal/model"
)

// QuoteSource supplies independent price quotes for a product term.
// Implementations wrap external price APIs and are called concurrently.
type QuoteSource interface {
	Name() string
	Quotes(ctx context.Context, term string) ([]model.PriceQuote, error)
}

// CollectQuotes fans out over the given quote sources and joins their
// results by source index. A failing source contributes an empty set;
// the caller decides whether having nothing at all is fatal.
func CollectQuotes(ctx context.Context, sources []QuoteSource, term string) [][]model.PriceQuote {
	if len(sources) == 0 {
		return nil
	}

	quoteSets := make([][]model.PriceQuote, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			quotes, err := src.Quotes(gctx, term)
			if err != nil {
				zap.L().Warn("pricing: quote source failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				return nil
			}
			quoteSets[i] = quotes
			return nil
		})
	}
	_ = g.Wait()
	return quoteSets
}
