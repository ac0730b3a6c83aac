package review

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/resilience"
)

func reviewTexts(texts ...string) []model.Review {
	reviews := make([]model.Review, len(texts))
	for i, text := range texts {
		reviews[i] = model.Review{Text: text}
	}
	return reviews
}

func TestAnalyzeMixedSentiment(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(KeywordClassifier{})
	analysis, err := analyzer.Analyze(context.Background(), "p1", reviewTexts(
		"Excellent! Highly recommend!",
		"Terrible, broke after a week.",
	), Options{})
	require.NoError(t, err)

	require.Len(t, analysis.Reviews, 2)
	assert.Equal(t, model.SentimentPositive, analysis.Reviews[0].Sentiment.Label)
	assert.GreaterOrEqual(t, analysis.Reviews[0].Sentiment.Confidence, 0.7)
	assert.Equal(t, model.SentimentNegative, analysis.Reviews[1].Sentiment.Label)
	assert.GreaterOrEqual(t, analysis.Reviews[1].Sentiment.Confidence, 0.7)

	assert.Equal(t, 2, analysis.Summary.TotalReviews)
	assert.Equal(t, 1, analysis.Summary.PositiveCount)
	assert.Equal(t, 1, analysis.Summary.NegativeCount)
	assert.Equal(t, 50.0, analysis.Summary.PositivePercent)
	// Average of two 0.8 confidences crosses the positive threshold.
	assert.Equal(t, model.SentimentPositive, analysis.Summary.OverallSentiment)
}

func TestAnalyzeEmptyReviews(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(KeywordClassifier{})
	_, err := analyzer.Analyze(context.Background(), "p1", nil, Options{})
	assert.ErrorIs(t, err, ErrNoReviews)
}

func TestAnalyzeFailureSubstitutesNeutral(t *testing.T) {
	t.Parallel()

	failing := ClassifierFunc(func(_ context.Context, text string) (model.SentimentResult, error) {
		if text == "broken" {
			return model.SentimentResult{}, eris.New("classifier down")
		}
		return model.SentimentResult{Label: model.SentimentPositive, Confidence: 0.9}, nil
	})

	analyzer := NewAnalyzer(failing, WithRetry(resilience.RetryConfig{MaxAttempts: 1}))
	analysis, err := analyzer.Analyze(context.Background(), "p1", reviewTexts("fine", "broken", "fine"), Options{})
	require.NoError(t, err)

	require.Len(t, analysis.Reviews, 3)
	assert.Equal(t, model.SentimentPositive, analysis.Reviews[0].Sentiment.Label)
	assert.Equal(t, model.SentimentNeutral, analysis.Reviews[1].Sentiment.Label)
	assert.Equal(t, 0.5, analysis.Reviews[1].Sentiment.Confidence)
	assert.Equal(t, model.SentimentPositive, analysis.Reviews[2].Sentiment.Label)
}

func TestAnalyzeRetriesTransientOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	flaky := ClassifierFunc(func(_ context.Context, _ string) (model.SentimentResult, error) {
		if calls.Add(1) == 1 {
			return model.SentimentResult{}, resilience.NewTransientError(eris.New("model loading"), 503)
		}
		return model.SentimentResult{Label: model.SentimentPositive, Confidence: 0.95}, nil
	})

	analyzer := NewAnalyzer(flaky, WithRetry(resilience.RetryOnce(time.Millisecond)))
	analysis, err := analyzer.Analyze(context.Background(), "p1", reviewTexts("only one"), Options{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, model.SentimentPositive, analysis.Reviews[0].Sentiment.Label)
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	t.Parallel()

	echo := ClassifierFunc(func(_ context.Context, text string) (model.SentimentResult, error) {
		return model.SentimentResult{Label: model.SentimentNeutral, Confidence: 0.5}, nil
	})

	texts := []string{"first", "second", "third", "fourth", "fifth"}
	analyzer := NewAnalyzer(echo, WithConcurrency(5))
	analysis, err := analyzer.Analyze(context.Background(), "p1", reviewTexts(texts...), Options{})
	require.NoError(t, err)

	require.Len(t, analysis.Reviews, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, analysis.Reviews[i].Text)
	}
}

func TestSummarizeThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		confidences []float64
		want        model.SentimentLabel
	}{
		{"high average is positive", []float64{0.9, 0.8}, model.SentimentPositive},
		{"low average is negative", []float64{0.3, 0.2}, model.SentimentNegative},
		{"mid average is neutral", []float64{0.5, 0.5}, model.SentimentNeutral},
		{"exactly 0.6 is neutral", []float64{0.6}, model.SentimentNeutral},
		{"exactly 0.4 is neutral", []float64{0.4}, model.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analyzed := make([]model.AnalyzedReview, len(tt.confidences))
			for i, c := range tt.confidences {
				analyzed[i] = model.AnalyzedReview{
					Sentiment: model.SentimentResult{Label: model.SentimentNeutral, Confidence: c},
				}
			}
			assert.Equal(t, tt.want, summarize(analyzed).OverallSentiment)
		})
	}
}

func TestRatingTierSource(t *testing.T) {
	t.Parallel()

	rating := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		rating    *float64
		wantFirst string
	}{
		{"high tier", rating(4.7), "Excellent product! Highly recommend!"},
		{"mid tier", rating(4.2), "Good product, worth the price."},
		{"low tier", rating(3.1), "Not great quality, disappointed."},
		{"missing rating defaults to mid tier", nil, "Good product, worth the price."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reviews, err := RatingTierSource{}.Reviews(context.Background(), model.Product{Rating: tt.rating})
			require.NoError(t, err)
			require.Len(t, reviews, 5)
			assert.Equal(t, tt.wantFirst, reviews[0].Text)
			require.NotNil(t, reviews[0].Rating)
		})
	}
}
