// Package review classifies customer review sentiment, aggregates the
// results into per-product summaries, and extracts recurring themes.
package review

import (
	"context"
	"strings"

	"github.com/dealscope/dealscope/internal/model"
)

// Classifier labels a single review text with a sentiment and confidence.
// Implementations are called concurrently and must be safe for that.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.SentimentResult, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string) (model.SentimentResult, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (model.SentimentResult, error) {
	return f(ctx, text)
}

var (
	positiveWords = []string{"good", "great", "excellent", "love", "amazing", "perfect", "wonderful", "awesome", "fantastic"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "disappointed", "poor", "worst", "horrible", "waste"}
)

// KeywordClassifier is the offline fallback classifier. It counts
// positive and negative keyword hits in the lowercased text; confidence
// starts at 0.7 and grows 0.1 per hit up to 0.9, capped at 0.99. A tie
// is NEUTRAL with confidence 0.5.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text string) (model.SentimentResult, error) {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return model.SentimentResult{Label: model.SentimentPositive, Confidence: keywordScore(positive)}, nil
	case negative > positive:
		return model.SentimentResult{Label: model.SentimentNegative, Confidence: keywordScore(negative)}, nil
	default:
		return neutralResult(), nil
	}
}

func keywordScore(hits int) float64 {
	score := 0.7 + min(float64(hits)*0.1, 0.2)
	return min(score, 0.99)
}

func neutralResult() model.SentimentResult {
	return model.SentimentResult{Label: model.SentimentNeutral, Confidence: 0.5}
}
