package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/model"
)

type stubAdapter struct {
	name     string
	products []model.Product
	err      error
	gotTerm  string
	gotMax   int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(_ context.Context, term string, maxResults int, _ model.SearchFilters) ([]model.Product, error) {
	s.gotTerm = term
	s.gotMax = maxResults
	return s.products, s.err
}

func TestSearchJoinsInRegistrationOrder(t *testing.T) {
	t.Parallel()

	ebay := &stubAdapter{name: "ebay", products: []model.Product{{ID: "e1", Source: "ebay"}}}
	bestbuy := &stubAdapter{name: "bestbuy", products: []model.Product{{ID: "b1", Source: "bestbuy"}}}

	searcher := NewSearcher(ebay, bestbuy)
	result, err := searcher.Search(context.Background(), "widget", 5, nil, model.SearchFilters{})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "e1", result.Products[0].ID)
	assert.Equal(t, "b1", result.Products[1].ID)
	assert.Equal(t, []string{"ebay", "bestbuy"}, result.SourcesQueried)
	assert.Equal(t, []string{"ebay", "bestbuy"}, result.SourcesResponded)
}

func TestSearchToleratesFailedSource(t *testing.T) {
	t.Parallel()

	ebay := &stubAdapter{name: "ebay", err: eris.New("upstream down")}
	bestbuy := &stubAdapter{name: "bestbuy", products: []model.Product{{ID: "b1"}}}

	searcher := NewSearcher(ebay, bestbuy)
	result, err := searcher.Search(context.Background(), "widget", 5, nil, model.SearchFilters{})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, []string{"ebay", "bestbuy"}, result.SourcesQueried)
	assert.Equal(t, []string{"bestbuy"}, result.SourcesResponded)
}

func TestSearchEmptyTerm(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher()
	_, err := searcher.Search(context.Background(), "", 5, nil, model.SearchFilters{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchDefaultsMaxResults(t *testing.T) {
	t.Parallel()

	ebay := &stubAdapter{name: "ebay"}
	searcher := NewSearcher(ebay)
	_, err := searcher.Search(context.Background(), "widget", 0, nil, model.SearchFilters{})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, ebay.gotMax)
	assert.Equal(t, "widget", ebay.gotTerm)
}

func TestSearchSourceSelection(t *testing.T) {
	t.Parallel()

	ebay := &stubAdapter{name: "ebay", products: []model.Product{{ID: "e1"}}}
	bestbuy := &stubAdapter{name: "bestbuy", products: []model.Product{{ID: "b1"}}}

	searcher := NewSearcher(ebay, bestbuy)
	result, err := searcher.Search(context.Background(), "widget", 5, []string{"bestbuy"}, model.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, []string{"bestbuy"}, result.SourcesQueried)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "b1", result.Products[0].ID)
}

func TestSourcesListsAdapters(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher(&stubAdapter{name: "ebay"}, &stubAdapter{name: "bestbuy"})
	assert.Equal(t, []string{"ebay", "bestbuy"}, searcher.Sources())
}
