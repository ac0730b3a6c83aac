package review

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/resilience"
)

// ErrNoReviews indicates an analysis call with an empty review set.
var ErrNoReviews = eris.New("review: no reviews provided")

// Overall sentiment thresholds on the average confidence score.
const (
	positiveOverallThreshold = 0.6
	negativeOverallThreshold = 0.4
)

// defaultConcurrency bounds in-flight classifier calls per analysis.
const defaultConcurrency = 8

// Analyzer fans review texts out to a sentiment classifier and joins the
// results into a per-product analysis. A classification failure never
// fails the batch; the affected review falls back to NEUTRAL 0.5.
type Analyzer struct {
	classifier  Classifier
	retry       resilience.RetryConfig
	concurrency int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRetry overrides the classifier retry policy.
func WithRetry(cfg resilience.RetryConfig) AnalyzerOption {
	return func(a *Analyzer) {
		a.retry = cfg
	}
}

// WithConcurrency bounds the number of in-flight classifier calls.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAnalyzer creates an Analyzer. The default retry policy is a single
// retry after a fixed two second delay.
func NewAnalyzer(classifier Classifier, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		classifier:  classifier,
		retry:       resilience.RetryOnce(2 * time.Second),
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Options controls per-call analysis behavior.
type Options struct {
	// ExtractThemes adds theme statistics to the analysis.
	ExtractThemes bool
}

// Analyze classifies every review concurrently and derives the sentiment
// summary. Results are joined by input index, never by completion order,
// so Reviews[i] in the output corresponds to reviews[i] in the input.
func (a *Analyzer) Analyze(ctx context.Context, productID string, reviews []model.Review, opts Options) (*model.ReviewAnalysis, error) {
	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}

	zap.L().Info("review: analyzing reviews",
		zap.String("product_id", productID),
		zap.Int("count", len(reviews)),
	)

	analyzed := make([]model.AnalyzedReview, len(reviews))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, r := range reviews {
		g.Go(func() error {
			result, err := resilience.Do(gctx, a.retry, func(ctx context.Context) (model.SentimentResult, error) {
				return a.classifier.Classify(ctx, r.Text)
			})
			if err != nil {
				zap.L().Warn("review: classification failed, substituting neutral",
					zap.String("product_id", productID),
					zap.Int("index", i),
					zap.Error(err),
				)
				result = neutralResult()
			}
			analyzed[i] = model.AnalyzedReview{Review: r, Sentiment: result}
			return nil
		})
	}
	// Goroutines never return errors; Wait only observes ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "review: analysis canceled")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "review: analysis canceled")
	}

	analysis := &model.ReviewAnalysis{
		ProductID: productID,
		Reviews:   analyzed,
		Summary:   summarize(analyzed),
	}
	if opts.ExtractThemes {
		analysis.Themes = ExtractThemes(analyzed)
	}

	zap.L().Info("review: analysis complete",
		zap.String("product_id", productID),
		zap.String("overall_sentiment", string(analysis.Summary.OverallSentiment)),
	)

	return analysis, nil
}

// summarize derives the aggregate sentiment statistics for a batch.
func summarize(analyzed []model.AnalyzedReview) model.SentimentSummary {
	var positive, negative, neutral int
	var totalScore float64
	for _, r := range analyzed {
		switch r.Sentiment.Label {
		case model.SentimentPositive:
			positive++
		case model.SentimentNegative:
			negative++
		default:
			neutral++
		}
		totalScore += r.Sentiment.Confidence
	}

	total := len(analyzed)
	avg := totalScore / float64(total)

	overall := model.SentimentNeutral
	switch {
	case avg > positiveOverallThreshold:
		overall = model.SentimentPositive
	case avg < negativeOverallThreshold:
		overall = model.SentimentNegative
	}

	return model.SentimentSummary{
		TotalReviews:          total,
		PositiveCount:         positive,
		NegativeCount:         negative,
		NeutralCount:          neutral,
		PositivePercent:       round2(float64(positive) / float64(total) * 100),
		NegativePercent:       round2(float64(negative) / float64(total) * 100),
		AverageSentimentScore: round3(avg),
		OverallSentiment:      overall,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
