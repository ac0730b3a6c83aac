package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealscope/dealscope/internal/model"
)

var (
	searchMaxResults int
	searchSources    []string
	searchMinPrice   float64
	searchMaxPrice   float64
)

var searchCmd = &cobra.Command{
	Use:   "search <search-term>",
	Short: "Search retailers without pricing or review analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		o := buildOrchestrator(nil)

		maxResults := searchMaxResults
		if maxResults == 0 {
			maxResults = cfg.Pipeline.MaxResults
		}

		var filters model.SearchFilters
		if searchMinPrice > 0 {
			filters.MinPrice = &searchMinPrice
		}
		if searchMaxPrice > 0 {
			filters.MaxPrice = &searchMaxPrice
		}

		result, err := o.SearchOnly(ctx, args[0], maxResults, searchSources, filters)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "max products per retailer (default from config)")
	searchCmd.Flags().StringSliceVar(&searchSources, "sources", nil, "retailers to query (default all configured)")
	searchCmd.Flags().Float64Var(&searchMinPrice, "min-price", 0, "minimum price filter")
	searchCmd.Flags().Float64Var(&searchMaxPrice, "max-price", 0, "maximum price filter")
	rootCmd.AddCommand(searchCmd)
}
