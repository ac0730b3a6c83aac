package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealscope/dealscope/internal/model"
	"github.com/dealscope/dealscope/internal/pipeline"
)

var (
	runMaxResults int
	runSources    []string
	runBudget     float64
	runMinRating  float64
	runMinPrice   float64
	runMaxPrice   float64
	runNoPrices   bool
	runNoReviews  bool
	runXLSX       string
)

var runCmd = &cobra.Command{
	Use:   "run <search-term>",
	Short: "Run the full recommendation pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		term := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		o := buildOrchestrator(st)

		maxResults := runMaxResults
		if maxResults == 0 {
			maxResults = cfg.Pipeline.MaxResults
		}

		query := model.PipelineQuery{
			SearchTerm:     term,
			MaxResults:     maxResults,
			Sources:        runSources,
			IncludePrices:  !runNoPrices,
			IncludeReviews: !runNoReviews,
		}
		if runBudget > 0 {
			query.Preferences.Budget = &runBudget
		}
		if runMaxPrice > 0 {
			query.Preferences.MaxPrice = &runMaxPrice
		}
		query.Preferences.MinRating = runMinRating
		if runMinPrice > 0 {
			query.Filters.MinPrice = &runMinPrice
		}
		if runMaxPrice > 0 {
			query.Filters.MaxPrice = &runMaxPrice
		}

		result := o.Run(ctx, query)
		fmt.Print(pipeline.FormatReport(result))

		if runXLSX != "" && result.Success {
			path := runXLSX
			if path == "auto" {
				path = pipeline.DefaultExportName(term)
			}
			if err := pipeline.ExportXLSX(result, path); err != nil {
				return err
			}
			zap.L().Info("exported recommendations", zap.String("path", path))
		}

		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "max products per retailer (default from config)")
	runCmd.Flags().StringSliceVar(&runSources, "sources", nil, "retailers to query (default all configured)")
	runCmd.Flags().Float64Var(&runBudget, "budget", 0, "budget in dollars")
	runCmd.Flags().Float64Var(&runMinRating, "min-rating", 0, "exclude products rated below this")
	runCmd.Flags().Float64Var(&runMinPrice, "min-price", 0, "minimum price filter")
	runCmd.Flags().Float64Var(&runMaxPrice, "max-price", 0, "maximum price filter")
	runCmd.Flags().BoolVar(&runNoPrices, "no-prices", false, "skip the price comparison stage")
	runCmd.Flags().BoolVar(&runNoReviews, "no-reviews", false, "skip the review analysis stage")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "export recommendations to an xlsx file ('auto' derives a name)")
	rootCmd.AddCommand(runCmd)
}
