package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealscope/dealscope/internal/model"
)

var (
	scoreFile      string
	scoreBudget    float64
	scoreMinRating float64
	scoreMax       int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank products from a JSON file",
	Long:  "Reads a JSON array of products from --file or stdin and ranks them against the given preferences, without price or review data.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var products []model.Product
		if err := decodeJSONInput(scoreFile, &products); err != nil {
			return err
		}

		prefs := model.Preferences{
			MinRating:          scoreMinRating,
			MaxRecommendations: scoreMax,
		}
		if scoreBudget > 0 {
			prefs.Budget = &scoreBudget
		}

		o := buildOrchestrator(nil)
		recs, summary, err := o.ScoreOnly(products, nil, nil, prefs)
		if err != nil {
			return eris.Wrap(err, "score")
		}

		out := struct {
			Recommendations []model.Recommendation `json:"recommendations"`
			Summary         model.Summary          `json:"summary"`
		}{recs, summary}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// decodeJSONInput decodes a JSON document from a file or stdin.
func decodeJSONInput(path string, v any) error {
	if path == "" {
		if err := json.NewDecoder(os.Stdin).Decode(v); err != nil {
			return eris.Wrap(err, "decode stdin")
		}
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFile, "file", "", "JSON file with an array of products")
	scoreCmd.Flags().Float64Var(&scoreBudget, "budget", 0, "budget in dollars")
	scoreCmd.Flags().Float64Var(&scoreMinRating, "min-rating", 0, "exclude products rated below this")
	scoreCmd.Flags().IntVar(&scoreMax, "max", 0, "max recommendations (default 5)")
	rootCmd.AddCommand(scoreCmd)
}
