package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/history"
	"github.com/dealscope/dealscope/internal/model"
)

func quote(source string, price, shipping float64) model.PriceQuote {
	return model.PriceQuote{
		Source:       source,
		Price:        price,
		ShippingCost: shipping,
	}
}

func TestAggregateBestQuotePerSource(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(history.NewMemoryStore())
	report, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{quote("ebay", 30, 0), quote("ebay", 25, 0)},
		{quote("bestbuy", 28, 2)},
	}, Options{})
	require.NoError(t, err)

	require.Len(t, report.Comparisons, 2)
	// Comparisons sorted ascending by total cost: ebay 25 before bestbuy 30.
	assert.Equal(t, "ebay", report.Comparisons[0].Source)
	assert.Equal(t, 25.0, report.Comparisons[0].TotalCost)
	assert.Equal(t, 2, report.Comparisons[0].OptionsCount)
	assert.Equal(t, "bestbuy", report.Comparisons[1].Source)
	assert.Equal(t, 30.0, report.Comparisons[1].TotalCost)
}

func TestAggregateBestDealSavings(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(history.NewMemoryStore())
	report, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{quote("ebay", 80, 0)},
		{quote("bestbuy", 100, 0)},
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "ebay", report.BestDeal.Source)
	assert.Equal(t, 80.0, report.BestDeal.TotalCost)
	assert.Equal(t, 20.0, report.BestDeal.Savings)
	assert.Equal(t, 20.0, report.BestDeal.SavingsPercent)
	assert.Equal(t, 2, report.TotalSources)
}

func TestAggregateNoData(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(history.NewMemoryStore())
	_, err := agg.Aggregate("widget", [][]model.PriceQuote{{}, nil}, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAggregateNormalizesDefaults(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator(history.NewMemoryStore(), WithNow(func() time.Time { return fixed }))

	report, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{{Source: "ebay", Price: 19.999}},
	}, Options{})
	require.NoError(t, err)

	comp := report.Comparisons[0]
	assert.Equal(t, DefaultCurrency, comp.Currency)
	assert.Equal(t, DefaultAvailability, comp.Availability)
	assert.Equal(t, 20.0, comp.TotalCost)
	assert.Equal(t, "widget", comp.ProductName)
	assert.Equal(t, fixed, comp.LastUpdated)
	assert.Equal(t, fixed, report.ComparedAt)
}

func TestAggregateRecordsHistoryForBestQuoteOnly(t *testing.T) {
	t.Parallel()

	store := history.NewMemoryStore()
	agg := NewAggregator(store)

	_, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{quote("ebay", 30, 0), quote("ebay", 25, 0)},
	}, Options{})
	require.NoError(t, err)

	// One observation per source per aggregation, not one per quote.
	assert.Equal(t, 1, store.Len("widget", "ebay"))
}

func TestAggregateTrendAnnotation(t *testing.T) {
	t.Parallel()

	store := history.NewMemoryStore()
	store.Record("widget", "ebay", 100)

	agg := NewAggregator(store)
	report, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{quote("ebay", 120, 0)},
	}, Options{IncludeTrends: true})
	require.NoError(t, err)

	require.NotNil(t, report.Comparisons[0].Trend)
	assert.Equal(t, model.TrendIncreasing, report.Comparisons[0].Trend.Trend)
}

func TestAggregateSingleSourceSavings(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(history.NewMemoryStore())
	report, err := agg.Aggregate("widget", [][]model.PriceQuote{
		{quote("ebay", 50, 0)},
	}, Options{})
	require.NoError(t, err)

	assert.Zero(t, report.BestDeal.Savings)
	assert.Zero(t, report.BestDeal.SavingsPercent)
}

func TestQuotesFromProducts(t *testing.T) {
	t.Parallel()

	rating := 4.5
	products := []model.Product{
		{ID: "p1", Name: "Widget", Price: 10, ShippingCost: 2, TotalCost: 12, Source: "ebay", Rating: &rating},
	}

	quotes := QuotesFromProducts("widget", products)
	require.Len(t, quotes, 1)
	assert.Equal(t, "widget", quotes[0].ProductKey)
	assert.Equal(t, "p1", quotes[0].ProductID)
	assert.Equal(t, 12.0, quotes[0].TotalCost)
	require.NotNil(t, quotes[0].Rating)
}

func TestMapByProduct(t *testing.T) {
	t.Parallel()

	report := &model.PriceReport{
		Comparisons: []model.PriceComparison{
			{Source: "ebay", ProductID: "p1", ProductName: "Widget", TotalCost: 25},
			{Source: "bestbuy", ProductID: "p2", ProductName: "Widget", TotalCost: 30},
		},
		BestDeal: model.BestDeal{Source: "ebay", TotalCost: 25},
	}

	byProduct := MapByProduct(report)
	assert.Equal(t, 25.0, byProduct["p1"].Comparison.TotalCost)
	assert.Equal(t, 30.0, byProduct["p2"].Comparison.TotalCost)
	// Name key keeps the first comparison that claimed it.
	assert.Equal(t, "p1", byProduct["Widget"].Comparison.ProductID)

	assert.Nil(t, MapByProduct(nil))
}
