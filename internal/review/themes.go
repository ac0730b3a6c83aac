package review

import (
	_ "embed"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dealscope/dealscope/internal/model"
)

//go:embed themes.yaml
var themesYAML []byte

// maxThemes limits how many themes a single analysis reports.
const maxThemes = 5

var themeKeywords = mustLoadThemes()

func mustLoadThemes() map[string][]string {
	var themes map[string][]string
	if err := yaml.Unmarshal(themesYAML, &themes); err != nil {
		panic("review: invalid embedded themes.yaml: " + err.Error())
	}
	return themes
}

// ExtractThemes scans analyzed reviews for the fixed theme vocabularies
// and tallies mentions by sentiment. A review mentions a theme when any
// keyword appears as a substring of its lowercased text. Only themes with
// at least one mention are reported, descending by mention count, capped
// at five.
func ExtractThemes(reviews []model.AnalyzedReview) []model.ThemeStat {
	type tally struct {
		positive, negative, neutral int
	}
	counts := make(map[string]*tally, len(themeKeywords))

	for _, r := range reviews {
		lower := strings.ToLower(r.Text)
		for theme, keywords := range themeKeywords {
			if !mentionsAny(lower, keywords) {
				continue
			}
			t := counts[theme]
			if t == nil {
				t = &tally{}
				counts[theme] = t
			}
			switch r.Sentiment.Label {
			case model.SentimentPositive:
				t.positive++
			case model.SentimentNegative:
				t.negative++
			default:
				t.neutral++
			}
		}
	}

	stats := make([]model.ThemeStat, 0, len(counts))
	for theme, t := range counts {
		total := t.positive + t.negative + t.neutral
		stats = append(stats, model.ThemeStat{
			Theme:            theme,
			TotalMentions:    total,
			PositiveMentions: t.positive,
			NegativeMentions: t.negative,
			NeutralMentions:  t.neutral,
			PositivePercent:  round2(float64(t.positive) / float64(total) * 100),
			NegativePercent:  round2(float64(t.negative) / float64(total) * 100),
			SentimentRatio:   round2(float64(t.positive) / float64(total)),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TotalMentions != stats[j].TotalMentions {
			return stats[i].TotalMentions > stats[j].TotalMentions
		}
		return stats[i].Theme < stats[j].Theme
	})

	if len(stats) > maxThemes {
		stats = stats[:maxThemes]
	}
	return stats
}

func mentionsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
