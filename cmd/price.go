package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var priceMaxResults int

var priceCmd = &cobra.Command{
	Use:   "price <search-term>",
	Short: "Compare prices for a product across sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		o := buildOrchestrator(nil)

		maxResults := priceMaxResults
		if maxResults == 0 {
			maxResults = cfg.Pipeline.MaxResults
		}

		zap.L().Info("comparing prices",
			zap.String("search_term", args[0]),
			zap.Strings("quote_sources", o.QuoteSources()),
		)

		report, err := o.PriceOnly(ctx, args[0], maxResults)
		if err != nil {
			return eris.Wrap(err, "price")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	priceCmd.Flags().IntVar(&priceMaxResults, "max-results", 0, "max products per retailer (default from config)")
	rootCmd.AddCommand(priceCmd)
}
