package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testQuery(term string) model.PipelineQuery {
	return model.PipelineQuery{
		SearchTerm:     term,
		MaxResults:     5,
		IncludePrices:  true,
		IncludeReviews: true,
	}
}

func TestSQLiteStore_CreateAndGetRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery("wireless headphones"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "wireless headphones", got.Query.SearchTerm)
	assert.Nil(t, got.Result)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_UpdateRunStatus(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery("widget"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, got.Status)

	err = s.UpdateRunStatus(ctx, "nonexistent", model.RunStatusFailed)
	assert.Error(t, err)
}

func TestSQLiteStore_UpdateRunResult(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery("widget"))
	require.NoError(t, err)

	result := &model.RunResult{
		Success: true,
		Summary: model.Summary{TotalRecommendations: 3},
		Stages: []model.StageResult{
			{Name: model.StageSearch, Status: model.StageStatusComplete, Duration: 120},
		},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.True(t, got.Result.Success)
	assert.Equal(t, 3, got.Result.Summary.TotalRecommendations)
}

func TestSQLiteStore_UpdateRunResult_FailureMarksFailed(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery("widget"))
	require.NoError(t, err)

	result := &model.RunResult{Success: false, Error: "no products found"}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, testQuery("widget"))
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testQuery("gadget"))
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, first.ID, model.RunStatusComplete))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, first.ID, complete[0].ID)

	byTerm, err := s.ListRuns(ctx, RunFilter{SearchTerm: "gadget"})
	require.NoError(t, err)
	require.Len(t, byTerm, 1)
	assert.Equal(t, "gadget", byTerm[0].Query.SearchTerm)
}

func TestSQLiteStore_Stages(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testQuery("widget"))
	require.NoError(t, err)

	stageID, err := s.CreateStage(ctx, run.ID, model.StageSearch)
	require.NoError(t, err)
	assert.NotEmpty(t, stageID)

	err = s.CompleteStage(ctx, stageID, &model.StageResult{
		Name:     model.StageSearch,
		Status:   model.StageStatusComplete,
		Duration: 250,
		Metadata: map[string]any{"products_found": 4},
	})
	require.NoError(t, err)

	err = s.CompleteStage(ctx, "nonexistent", &model.StageResult{Status: model.StageStatusFailed})
	assert.Error(t, err)
}
