package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fetchCmd collects daily price history for the filtered universe
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and store daily prices for the filtered universe",
	Long: `Resolves today's filtered universe and downloads daily OHLCV
history for every symbol in it, upserting into the price store.

Example:
  go run ./cmd/screener fetch
  go run ./cmd/screener fetch --days 120`,
	RunE: runFetch,
}

var fetchDays int

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchDays, "days", 60, "trading days of history to fetch")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	symbols, err := a.orchestrator.GetFilteredUniverse(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}
	if len(symbols) == 0 {
		fmt.Println("Universe is empty, nothing to fetch")
		return nil
	}

	result, err := a.priceFetcher.FetchAndStore(ctx, symbols, fetchDays)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	fmt.Printf("Fetched %d/%d symbols (%d missing, %d saved)\n",
		result.Fetched, result.Requested, result.Missing, result.Saved)

	return nil
}
