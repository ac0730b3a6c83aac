package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealscope/dealscope/internal/model"
)

var reviewFile string

var reviewCmd = &cobra.Command{
	Use:   "review [review text ...]",
	Short: "Analyze review sentiment and themes",
	Long:  "Classifies each review, summarizes sentiment, and extracts themes. Reviews come from arguments, --file, or stdin (one JSON array of {text, rating}).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reviews, err := collectReviews(args)
		if err != nil {
			return err
		}

		o := buildOrchestrator(nil)
		analysis, err := o.ReviewOnly(ctx, reviews)
		if err != nil {
			return eris.Wrap(err, "review")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

// collectReviews gathers review texts from args, a JSON file, or stdin.
func collectReviews(args []string) ([]model.Review, error) {
	if len(args) > 0 {
		reviews := make([]model.Review, len(args))
		for i, text := range args {
			reviews[i] = model.Review{Text: text}
		}
		return reviews, nil
	}

	var r io.Reader
	if reviewFile != "" {
		f, err := os.Open(reviewFile)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", reviewFile)
		}
		defer f.Close() //nolint:errcheck
		r = f
	} else {
		r = os.Stdin
	}

	var reviews []model.Review
	if err := json.NewDecoder(r).Decode(&reviews); err != nil {
		return nil, eris.Wrap(err, "decode reviews")
	}
	return reviews, nil
}

func init() {
	reviewCmd.Flags().StringVar(&reviewFile, "file", "", "JSON file with an array of reviews")
	rootCmd.AddCommand(reviewCmd)
}
