// Package pricing merges price quotes from multiple sources, selects the
// best quote per source and the global best deal, and feeds observations
// into the price history store.
package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dealscope/dealscope/internal/history"
	"github.com/dealscope/dealscope/internal/model"
)

// DefaultCurrency is assumed for quotes that do not carry one.
const DefaultCurrency = "USD"

// DefaultAvailability is assumed for quotes that do not report stock state.
const DefaultAvailability = "In Stock"

// ErrNoData indicates that every configured source returned nothing.
// Distinct from a successful aggregation with zero comparisons.
var ErrNoData = eris.New("pricing: no price data")

// Options controls optional aggregation behavior.
type Options struct {
	// IncludeTrends annotates each comparison with the series trend.
	IncludeTrends bool
}

// Aggregator merges quotes and maintains price history.
type Aggregator struct {
	history history.Store
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates an Aggregator backed by the given history store.
func NewAggregator(hist history.Store, opts ...Option) *Aggregator {
	a := &Aggregator{history: hist, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Aggregate merges the given quote sets for one product query. A source
// that failed upstream simply contributes no quotes; only the case where
// every set is empty is reported as ErrNoData.
func (a *Aggregator) Aggregate(productName string, quoteSets [][]model.PriceQuote, opts Options) (*model.PriceReport, error) {
	var all []model.PriceQuote
	for _, set := range quoteSets {
		for _, q := range set {
			all = append(all, a.normalize(productName, q))
		}
	}

	if len(all) == 0 {
		return nil, ErrNoData
	}

	bySource := make(map[string][]model.PriceQuote)
	var sourceOrder []string
	for _, q := range all {
		if _, seen := bySource[q.Source]; !seen {
			sourceOrder = append(sourceOrder, q.Source)
		}
		bySource[q.Source] = append(bySource[q.Source], q)
	}

	comparisons := make([]model.PriceComparison, 0, len(bySource))
	for _, source := range sourceOrder {
		quotes := bySource[source]
		best := quotes[0]
		for _, q := range quotes[1:] {
			if q.TotalCost < best.TotalCost {
				best = q
			}
		}

		a.history.RecordAt(productName, source, best.TotalCost, best.Timestamp)

		comp := model.PriceComparison{
			Source:       source,
			Price:        best.Price,
			ShippingCost: best.ShippingCost,
			TotalCost:    round2(best.TotalCost),
			Currency:     best.Currency,
			ProductID:    best.ProductID,
			ProductName:  best.ProductName,
			URL:          best.URL,
			Availability: best.Availability,
			LastUpdated:  best.Timestamp,
			OptionsCount: len(quotes),
			Rating:       best.Rating,
			ReviewCount:  best.ReviewCount,
		}
		if opts.IncludeTrends {
			trend := a.history.Trend(productName, source)
			comp.Trend = &trend
		}
		comparisons = append(comparisons, comp)
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].TotalCost < comparisons[j].TotalCost
	})

	best := comparisons[0]
	highest := comparisons[len(comparisons)-1]
	savings := round2(highest.TotalCost - best.TotalCost)
	savingsPercent := 0.0
	if highest.TotalCost > 0 {
		savingsPercent = round2(savings / highest.TotalCost * 100)
	}

	zap.L().Info("pricing: best deal found",
		zap.String("product", productName),
		zap.String("source", best.Source),
		zap.Float64("total_cost", best.TotalCost),
		zap.Int("sources", len(comparisons)),
	)

	return &model.PriceReport{
		ProductName: productName,
		Comparisons: comparisons,
		BestDeal: model.BestDeal{
			Source:         best.Source,
			Price:          best.Price,
			ShippingCost:   best.ShippingCost,
			TotalCost:      best.TotalCost,
			Savings:        savings,
			SavingsPercent: savingsPercent,
			URL:            best.URL,
			ProductName:    best.ProductName,
		},
		ComparedAt:   a.now(),
		TotalSources: len(comparisons),
	}, nil
}

// normalize fills defaults on an incoming quote: missing shipping is 0,
// missing currency is USD, missing total is price+shipping, missing
// timestamp is ingestion time.
func (a *Aggregator) normalize(productName string, q model.PriceQuote) model.PriceQuote {
	if q.ProductKey == "" {
		q.ProductKey = productName
	}
	if q.ProductName == "" {
		q.ProductName = productName
	}
	if q.Currency == "" {
		q.Currency = DefaultCurrency
	}
	if q.Availability == "" {
		q.Availability = DefaultAvailability
	}
	if q.TotalCost == 0 {
		q.TotalCost = q.Price + q.ShippingCost
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = a.now()
	}
	q.Price = round2(q.Price)
	q.ShippingCost = round2(q.ShippingCost)
	q.TotalCost = round2(q.TotalCost)
	return q
}

// QuotesFromProducts converts search results into quotes, one per product.
func QuotesFromProducts(productName string, products []model.Product) []model.PriceQuote {
	quotes := make([]model.PriceQuote, 0, len(products))
	for _, p := range products {
		quotes = append(quotes, model.PriceQuote{
			ProductKey:   productName,
			Source:       p.Source,
			Price:        p.Price,
			ShippingCost: p.ShippingCost,
			TotalCost:    p.TotalCost,
			Currency:     p.Currency,
			ProductID:    p.ID,
			ProductName:  p.Name,
			URL:          p.URL,
			Rating:       p.Rating,
			ReviewCount:  p.ReviewCount,
		})
	}
	return quotes
}

// MapByProduct indexes a report by product ID and product name so the
// scoring stage can look up price data for each candidate.
func MapByProduct(report *model.PriceReport) map[string]model.ProductPriceData {
	if report == nil {
		return nil
	}
	out := make(map[string]model.ProductPriceData, len(report.Comparisons))
	for _, comp := range report.Comparisons {
		data := model.ProductPriceData{Comparison: comp, BestDeal: report.BestDeal}
		if comp.ProductID != "" {
			out[comp.ProductID] = data
		}
		if comp.ProductName != "" {
			if _, exists := out[comp.ProductName]; !exists {
				out[comp.ProductName] = data
			}
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
