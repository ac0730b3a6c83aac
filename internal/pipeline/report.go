package pipeline

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dealscope/dealscope/internal/model"
)

var reportPrinter = message.NewPrinter(language.English)

// FormatReport renders a run result as a human-readable text report.
func FormatReport(result *model.PipelineResult) string {
	var b strings.Builder

	if !result.Success {
		fmt.Fprintf(&b, "Run failed: %s\n", result.Error)
		writeStages(&b, result.Stages)
		return b.String()
	}

	s := result.Summary
	reportPrinter.Fprintf(&b, "Found %d recommendation(s) from %d product(s)\n",
		s.TotalRecommendations, s.TotalProductsFound)
	if s.TotalRecommendations > 0 {
		reportPrinter.Fprintf(&b, "Average score %.3f, prices $%.2f to $%.2f\n",
			s.AverageScore, s.PriceRange.Min, s.PriceRange.Max)
	}
	if s.TopPick != nil {
		reportPrinter.Fprintf(&b, "Top pick: %s (%.3f)\n", s.TopPick.Name, s.TopPick.Score)
	}
	b.WriteString("\n")

	for i, rec := range result.Recommendations {
		reportPrinter.Fprintf(&b, "%d. %s [%s] $%.2f score %.3f\n",
			i+1, rec.Product.Name, rec.Product.Source, recPrice(rec), rec.Score)
		fmt.Fprintf(&b, "   %s\n", rec.Reason)
		if rec.PriceData != nil && rec.PriceData.Comparison.Trend != nil {
			trend := rec.PriceData.Comparison.Trend
			if trend.Trend == model.TrendIncreasing || trend.Trend == model.TrendDecreasing {
				reportPrinter.Fprintf(&b, "   Price %s %.2f%% over tracked history\n",
					trendVerb(trend.Trend), math.Abs(trend.ChangePercent))
			}
		}
	}

	writeStages(&b, result.Stages)
	return b.String()
}

func writeStages(b *strings.Builder, stages map[string]model.StageResult) {
	if len(stages) == 0 {
		return
	}
	b.WriteString("\nStages:\n")
	for _, name := range []string{model.StageSearch, model.StagePrice, model.StageReview, model.StageScore} {
		sr, ok := stages[name]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  %-7s %-9s %dms", sr.Name, sr.Status, sr.Duration)
		if sr.Error != "" {
			fmt.Fprintf(b, "  %s", sr.Error)
		}
		b.WriteString("\n")
	}
}

func recPrice(rec model.Recommendation) float64 {
	if rec.PriceData != nil && rec.PriceData.Comparison.TotalCost > 0 {
		return rec.PriceData.Comparison.TotalCost
	}
	return rec.Product.Price
}

func trendVerb(t model.Trend) string {
	if t == model.TrendDecreasing {
		return "down"
	}
	return "up"
}
